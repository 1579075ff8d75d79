package jsvalue

import "github.com/google/uuid"

// NewSymbol mints a fresh, globally unique Symbol. uuid is used purely as
// an unforgeable id generator, the same role it plays for session/trace
// ids elsewhere in the harness — Symbol identity has nothing to do with
// the value being a valid UUID, only that no two calls ever collide.
func NewSymbol(desc string) Symbol {
	return Symbol{ID: uuid.NewString(), Desc: desc}
}

// Well-known symbols used by the generator/iterator protocol. These are
// fixed at package init so every generator object can compare against the
// same identity.
var (
	SymbolIterator      = Symbol{ID: "@@iterator", Desc: "Symbol.iterator"}
	SymbolAsyncIterator = Symbol{ID: "@@asyncIterator", Desc: "Symbol.asyncIterator"}
)
