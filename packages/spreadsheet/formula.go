package spreadsheet

// FormulaKey is the normalized body of a formula (upper-cased, whitespace
// removed). two bodies that differ only in case or spacing share a key and
// therefore share one tokenization.
type FormulaKey string

// formulaEntry is what the engine needs from a formula on every recompute
type formulaEntry struct {
	key    FormulaKey
	tokens []Token
	refs   []string // canonical, distinct, in order of first occurrence
}

// FormulaTable stores tokenized formula bodies centrally, so a recompute
// pass never re-scans text, and tracks which cells use each formula.
type FormulaTable struct {
	// core formula storage

	keyIndex map[FormulaKey]uint32   // normalized body -> formula ID
	entries  map[uint32]formulaEntry // formula ID -> cached tokens and refs

	// cell tracking

	cellsUsingFormula map[uint32]map[string]struct{} // formula ID -> cells using it
	formulaAtCell     map[string]uint32              // cell -> formula ID (reverse index)

	nextID uint32
}

// NewFormulaTable creates a new formula table
func NewFormulaTable() *FormulaTable {
	return &FormulaTable{
		keyIndex:          make(map[FormulaKey]uint32),
		entries:           make(map[uint32]formulaEntry),
		cellsUsingFormula: make(map[uint32]map[string]struct{}),
		formulaAtCell:     make(map[string]uint32),
		nextID:            1, // start at 1, reserve 0 for no formula
	}
}

// normalizeBody converts a formula body to its key
func normalizeBody(body string) FormulaKey {
	return FormulaKey(preprocess(body))
}

// InternFormula records that cell holds the formula body, tokenizing it if
// no other cell uses the same body yet. any formula previously held by cell
// is released. returns the formula ID.
func (ft *FormulaTable) InternFormula(body string, cell string) uint32 {
	key := normalizeBody(body)

	id, exists := ft.keyIndex[key]
	if !exists {
		id = ft.nextID
		ft.nextID++
		ft.keyIndex[key] = id
		ft.entries[id] = formulaEntry{
			key:    key,
			tokens: NewLexer(string(key)).Tokenize(),
			refs:   canonicalRefs(string(key)),
		}
	}

	ft.trackCellUsage(id, cell)
	return id
}

// trackCellUsage moves cell from its old formula (if any) to formulaID
func (ft *FormulaTable) trackCellUsage(formulaID uint32, cell string) {
	if oldFormulaID, exists := ft.formulaAtCell[cell]; exists {
		if oldFormulaID == formulaID {
			return
		}
		ft.Release(cell)
	}

	if ft.cellsUsingFormula[formulaID] == nil {
		ft.cellsUsingFormula[formulaID] = make(map[string]struct{})
	}
	ft.cellsUsingFormula[formulaID][cell] = struct{}{}
	ft.formulaAtCell[cell] = formulaID
}

// Release removes cell from the formula it uses. returns true if the
// formula was removed due to zero references.
func (ft *FormulaTable) Release(cell string) bool {
	formulaID, exists := ft.formulaAtCell[cell]
	if !exists {
		return false
	}
	delete(ft.formulaAtCell, cell)

	cells := ft.cellsUsingFormula[formulaID]
	delete(cells, cell)
	if len(cells) > 0 {
		return false
	}

	// clean up formula completely
	delete(ft.cellsUsingFormula, formulaID)
	if entry, ok := ft.entries[formulaID]; ok {
		delete(ft.keyIndex, entry.key)
	}
	delete(ft.entries, formulaID)
	return true
}

// GetTokens retrieves the cached tokens for a formula ID
func (ft *FormulaTable) GetTokens(id uint32) ([]Token, bool) {
	entry, exists := ft.entries[id]
	return entry.tokens, exists
}

// GetCellRefs retrieves the cell references mentioned by a formula ID
func (ft *FormulaTable) GetCellRefs(id uint32) ([]string, bool) {
	entry, exists := ft.entries[id]
	return entry.refs, exists
}

// GetFormulaAtCell returns the formula ID used by a cell
func (ft *FormulaTable) GetFormulaAtCell(cell string) (uint32, bool) {
	id, exists := ft.formulaAtCell[cell]
	return id, exists
}

// GetReferenceCount returns how many cells use a formula
func (ft *FormulaTable) GetReferenceCount(id uint32) int {
	return len(ft.cellsUsingFormula[id])
}

// Count returns the number of unique formulas in the table
func (ft *FormulaTable) Count() int {
	return len(ft.entries)
}

// Clear removes all formulas from the table
func (ft *FormulaTable) Clear() {
	ft.keyIndex = make(map[FormulaKey]uint32)
	ft.entries = make(map[uint32]formulaEntry)
	ft.cellsUsingFormula = make(map[uint32]map[string]struct{})
	ft.formulaAtCell = make(map[string]uint32)
	ft.nextID = 1
}

// canonicalRefs extracts the distinct canonical references of a body
func canonicalRefs(body string) []string {
	raw := CellRefsOf(body)
	seen := make(map[string]struct{}, len(raw))
	refs := make([]string, 0, len(raw))
	for _, ref := range raw {
		ref = CanonicalCellRef(ref)
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}
