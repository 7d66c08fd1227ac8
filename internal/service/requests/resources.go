package requests

// JSON-API resource shapes of the relay surface.

const (
	ORDER  = "order"
	CANCEL = "order_cancel"
)

type Key struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`
}

type SubmitOrderRequest struct {
	Data SubmitOrder `json:"data"`
}

type SubmitOrder struct {
	Key
	Attributes SubmitOrderAttributes `json:"attributes"`
}

type SubmitOrderAttributes struct {
	Salt         string `json:"salt"`
	Maker        string `json:"maker"`
	Receiver     string `json:"receiver"`
	MakerAsset   string `json:"maker_asset"`
	TakerAsset   string `json:"taker_asset"`
	MakingAmount string `json:"making_amount"`
	TakingAmount string `json:"taking_amount"`
	Traits       string `json:"traits"`
	Extension    string `json:"extension,omitempty"`
	Signature    string `json:"signature"`
	ChainID      int64  `json:"chain_id"`
}

type OrderResponse struct {
	Data Order `json:"data"`
}

type OrdersResponse struct {
	Data []Order `json:"data"`
}

type Order struct {
	Key
	Attributes OrderAttributes `json:"attributes"`
}

type OrderAttributes struct {
	Status     string  `json:"status"`
	FillTxHash *string `json:"fill_tx_hash,omitempty"`
}

type CancelOrderRequest struct {
	Data CancelOrder `json:"data"`
}

type CancelOrder struct {
	Key
	Attributes CancelOrderAttributes `json:"attributes"`
}

type CancelOrderAttributes struct {
	Maker     string `json:"maker"`
	Signature string `json:"signature"`
}

type CancelOrderResponse struct {
	Data struct {
		Key
		Attributes struct {
			TxHash string `json:"tx_hash"`
		} `json:"attributes"`
	} `json:"data"`
}
