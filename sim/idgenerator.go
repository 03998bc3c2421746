package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	idGeneratorMutex sync.Mutex
	idGenerator      IDGenerator
)

// IDGenerator generates the IDs of events and sessions.
type IDGenerator interface {
	Generate() string
}

// UseParallelIDGenerator switches to globally unique IDs, so that sessions of
// several runs written into one place do not collide. It must be called
// before the first ID is generated. IDs are sequential otherwise, which keeps
// the traces of two runs comparable.
func UseParallelIDGenerator() {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	switch idGenerator.(type) {
	case nil:
		idGenerator = parallelIDGenerator{}
	case parallelIDGenerator:
	default:
		log.Panic("cannot change id generator type after using it")
	}
}

// GetIDGenerator returns the ID generator of the process.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator == nil {
		idGenerator = &sequentialIDGenerator{}
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type parallelIDGenerator struct{}

func (parallelIDGenerator) Generate() string {
	return xid.New().String()
}
