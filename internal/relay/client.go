package relay

import (
	"context"
	"net/http"
	"net/url"

	jsonapi "gitlab.com/distributed_lab/json-api-connector"
	"gitlab.com/distributed_lab/json-api-connector/cerrors"
	"gitlab.com/distributed_lab/logan/v3/errors"

	"github.com/IndexFi/oracle-order-svc/internal/service/requests"
)

var ErrOrderNotFound = errors.New("order is not known to the relay")

// Client is the off-chain relay surface: it stores signed orders and exposes
// them to fillers.
type Client interface {
	SubmitOrder(ctx context.Context, body requests.SubmitOrderRequest) error
	GetOrder(orderHash string) (*requests.Order, error)
	GetOrdersByMaker(maker string) ([]requests.Order, error)
	CancelOrder(ctx context.Context, orderHash string, body requests.CancelOrderRequest) (string, error)
}

type client struct {
	conn *jsonapi.Connector
}

func NewClient(conn *jsonapi.Connector) Client {
	return client{conn: conn}
}

func (c client) SubmitOrder(ctx context.Context, body requests.SubmitOrderRequest) error {
	u, _ := url.Parse("/orders")
	err := c.conn.PostJSON(u, body, ctx, nil)
	return errors.Wrap(err, "failed to submit order to relay")
}

func (c client) GetOrder(orderHash string) (*requests.Order, error) {
	u, err := url.Parse("/orders/" + orderHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse url")
	}

	var resp requests.OrderResponse
	if err = c.conn.Get(u, &resp); err != nil {
		if IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "failed to get order from relay")
	}

	return &resp.Data, nil
}

func (c client) GetOrdersByMaker(maker string) ([]requests.Order, error) {
	u, err := url.Parse("/orders?filter[maker]=" + maker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse url")
	}

	var resp requests.OrdersResponse
	if err = c.conn.Get(u, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to get maker orders from relay")
	}

	return resp.Data, nil
}

func (c client) CancelOrder(ctx context.Context, orderHash string, body requests.CancelOrderRequest) (string, error) {
	u, _ := url.Parse("/orders/" + orderHash + "/cancel")

	var resp requests.CancelOrderResponse
	if err := c.conn.PostJSON(u, body, ctx, &resp); err != nil {
		if IsNotFound(err) {
			return "", ErrOrderNotFound
		}
		return "", errors.Wrap(err, "failed to cancel order on relay")
	}

	return resp.Data.Attributes.TxHash, nil
}

// IsRejection tells a relay-level rejection (bad allowance, malformed
// payload, rate limit) apart from transport failures. Rejected orders stay
// locally valid and are safe to resubmit.
func IsRejection(err error) bool {
	c, ok := err.(cerrors.Error)
	return ok && c.Status() >= http.StatusBadRequest && c.Status() < http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	c, ok := err.(cerrors.Error)
	return ok && c.Status() == http.StatusNotFound
}
