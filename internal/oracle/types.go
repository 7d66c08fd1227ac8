package oracle

import "math/big"

// Backend tells which update path is authorized to push values for an index:
// a manually-fed store or a managed external feed.
type Backend uint8

const (
	BackendMock Backend = iota
	BackendManaged
)

func (b Backend) String() string {
	switch b {
	case BackendMock:
		return "mock"
	case BackendManaged:
		return "managed"
	}
	return "unknown"
}

// Predefined indexes deployed with the mock backend.
const (
	IndexAAPL int64 = iota
	IndexTSLA
	IndexVIX
)

func PredefinedIndexID(symbol string) (*big.Int, bool) {
	switch symbol {
	case "AAPL":
		return big.NewInt(IndexAAPL), true
	case "TSLA":
		return big.NewInt(IndexTSLA), true
	case "VIX":
		return big.NewInt(IndexVIX), true
	}
	return nil, false
}
