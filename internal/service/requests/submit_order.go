package requests

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/IndexFi/oracle-order-svc/internal/order"
)

func NewSubmitOrder(o *order.Order, sig []byte, orderHash common.Hash, chainID int64) SubmitOrderRequest {
	attrs := SubmitOrderAttributes{
		Salt:         o.Salt.String(),
		Maker:        o.Maker.String(),
		Receiver:     o.Receiver.String(),
		MakerAsset:   o.MakerAsset.String(),
		TakerAsset:   o.TakerAsset.String(),
		MakingAmount: o.MakingAmount.String(),
		TakingAmount: o.TakingAmount.String(),
		Traits:       o.Traits.Encode().String(),
		Signature:    hexutil.Encode(sig),
		ChainID:      chainID,
	}
	if len(o.Extension) > 0 {
		attrs.Extension = hexutil.Encode(o.Extension)
	}

	return SubmitOrderRequest{
		Data: SubmitOrder{
			Key: Key{
				ID:   orderHash.Hex(),
				Type: ORDER,
			},
			Attributes: attrs,
		},
	}
}

func NewCancelOrder(orderHash string, maker common.Address, sig []byte) CancelOrderRequest {
	return CancelOrderRequest{
		Data: CancelOrder{
			Key: Key{
				ID:   orderHash,
				Type: CANCEL,
			},
			Attributes: CancelOrderAttributes{
				Maker:     maker.String(),
				Signature: hexutil.Encode(sig),
			},
		},
	}
}
