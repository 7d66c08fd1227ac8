package memory

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IndexFi/oracle-order-svc/internal/data"
)

func testEntry(hash, maker string, status data.Status) data.OrderCacheEntry {
	return data.OrderCacheEntry{
		OrderHash:         hash,
		Maker:             maker,
		Receiver:          maker,
		MakerAsset:        "0x1111111111111111111111111111111111111111",
		TakerAsset:        "0x2222222222222222222222222222222222222222",
		MakingAmount:      "1000",
		TakingAmount:      "2000",
		Salt:              "1",
		Traits:            "0",
		Signature:         "0xaa",
		ExpiresAt:         time.Now().Add(time.Hour),
		ChainID:           1,
		VerifyingContract: "0x3333333333333333333333333333333333333333",
		Status:            status,
		CreatedAt:         time.Now(),
	}
}

func conditionalEntry(hash, maker string, status data.Status) data.OrderCacheEntry {
	entry := testEntry(hash, maker, status)
	entry.IndexID = sql.NullInt64{Int64: 2, Valid: true}
	entry.Operator = sql.NullString{String: "gt", Valid: true}
	entry.Threshold = sql.NullString{String: "2000", Valid: true}
	return entry
}

func TestOrdersInsertGetUpdate(t *testing.T) {
	q := NewOrders()

	entry := testEntry("0x01", "0xaaaa", data.StatusSubmitted)
	require.NoError(t, q.Insert(entry))
	require.Error(t, q.Insert(entry))

	got, err := q.Get("0x01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entry.Maker, got.Maker)

	got, err = q.Get("0x02")
	require.NoError(t, err)
	assert.Nil(t, got)

	entry.Status = data.StatusPending
	require.NoError(t, q.Update(entry))
	got, err = q.Get("0x01")
	require.NoError(t, err)
	assert.Equal(t, data.StatusPending, got.Status)

	require.Error(t, q.Update(testEntry("0x09", "0xaaaa", data.StatusSubmitted)))
}

func insertAt(t *testing.T, q data.Orders, entry data.OrderCacheEntry, createdAt time.Time) {
	t.Helper()
	entry.CreatedAt = createdAt
	require.NoError(t, q.Insert(entry))
}

func TestOrdersListByMaker(t *testing.T) {
	q := NewOrders()
	now := time.Now()
	insertAt(t, q, testEntry("0x01", "0xaaaa", data.StatusSubmitted), now.Add(-2*time.Minute))
	insertAt(t, q, testEntry("0x02", "0xaaaa", data.StatusFilled), now.Add(-time.Minute))
	insertAt(t, q, testEntry("0x03", "0xbbbb", data.StatusSubmitted), now)

	list, err := q.ListByMaker("0xaaaa")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "0x02", list[0].OrderHash, "newest entry comes first")
	assert.Equal(t, "0x01", list[1].OrderHash)
}

func TestOrdersListConditional(t *testing.T) {
	q := NewOrders()
	now := time.Now()
	insertAt(t, q, testEntry("0x01", "0xaaaa", data.StatusSubmitted), now.Add(-2*time.Minute))
	insertAt(t, q, conditionalEntry("0x02", "0xaaaa", data.StatusSubmitted), now.Add(-time.Minute))
	insertAt(t, q, conditionalEntry("0x03", "0xbbbb", data.StatusFilled), now)

	conditional, err := q.ListConditional(true)
	require.NoError(t, err)
	require.Len(t, conditional, 2)
	assert.Equal(t, "0x03", conditional[0].OrderHash)
	assert.Equal(t, "0x02", conditional[1].OrderHash)

	plain, err := q.ListConditional(false)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Equal(t, "0x01", plain[0].OrderHash)
}

func TestOrdersListActive(t *testing.T) {
	q := NewOrders()
	now := time.Now()
	insertAt(t, q, testEntry("0x01", "0xaaaa", data.StatusSubmitted), now.Add(-3*time.Minute))
	insertAt(t, q, testEntry("0x02", "0xaaaa", data.StatusPending), now.Add(-2*time.Minute))
	insertAt(t, q, testEntry("0x03", "0xaaaa", data.StatusFilled), now.Add(-time.Minute))
	insertAt(t, q, testEntry("0x04", "0xaaaa", data.StatusCancelled), now)

	active, err := q.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "0x01", active[0].OrderHash, "oldest active entry comes first")
	assert.Equal(t, "0x02", active[1].OrderHash)
}

func TestOrdersDelete(t *testing.T) {
	q := NewOrders()
	require.NoError(t, q.Insert(testEntry("0x01", "0xaaaa", data.StatusSubmitted)))
	require.NoError(t, q.Insert(testEntry("0x02", "0xaaaa", data.StatusSubmitted)))
	require.NoError(t, q.Insert(testEntry("0x03", "0xbbbb", data.StatusSubmitted)))

	require.NoError(t, q.Delete("0x01"))
	got, err := q.Get("0x01")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, q.DeleteByMaker("0xaaaa"))
	list, err := q.ListByMaker("0xaaaa")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, q.DeleteAll())
	list, err = q.ListByMaker("0xbbbb")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOrdersDeleteTerminalBefore(t *testing.T) {
	q := NewOrders()

	old := testEntry("0x01", "0xaaaa", data.StatusFilled)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, q.Insert(old))

	oldActive := testEntry("0x02", "0xaaaa", data.StatusPending)
	oldActive.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, q.Insert(oldActive))

	fresh := testEntry("0x03", "0xaaaa", data.StatusExpired)
	require.NoError(t, q.Insert(fresh))

	require.NoError(t, q.DeleteTerminalBefore(time.Now().Add(-24*time.Hour)))

	got, err := q.Get("0x01")
	require.NoError(t, err)
	assert.Nil(t, got, "terminal entry past retention must be pruned")

	got, err = q.Get("0x02")
	require.NoError(t, err)
	assert.NotNil(t, got, "active entries are kept regardless of age")

	got, err = q.Get("0x03")
	require.NoError(t, err)
	assert.NotNil(t, got, "recent terminal entries are kept")
}
