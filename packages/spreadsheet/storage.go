package spreadsheet

// Storage holds the tables shared by the engine's operations: the sparse
// cell map, the formula cache and the dependency graph of the last accepted
// recompute
type Storage struct {
	cells           map[string]*Cell
	formulas        *FormulaTable
	dependencyGraph *DependencyGraph
}

func newStorage() *Storage {
	return &Storage{
		cells:           make(map[string]*Cell),
		formulas:        NewFormulaTable(),
		dependencyGraph: NewDependencyGraph(),
	}
}

// get returns the cell stored at ref
func (st *Storage) get(ref string) (*Cell, bool) {
	cell, exists := st.cells[ref]
	return cell, exists
}

// put writes instruction to ref, creating the cell if needed. the value is
// left alone; only a recompute changes it.
func (st *Storage) put(ref, instruction string) *Cell {
	cell, exists := st.cells[ref]
	if !exists {
		cell = &Cell{}
		st.cells[ref] = cell
	}
	cell.Instruction = instruction

	if cell.IsFormula() {
		st.formulas.InternFormula(cell.Body(), ref)
	} else {
		st.formulas.Release(ref)
	}
	return cell
}

// remove deletes the cell at ref. returns false if there was none.
func (st *Storage) remove(ref string) bool {
	if _, exists := st.cells[ref]; !exists {
		return false
	}
	delete(st.cells, ref)
	st.formulas.Release(ref)
	return true
}

// refs returns every populated reference in row-major order
func (st *Storage) refs() []string {
	refs := make([]string, 0, len(st.cells))
	for ref := range st.cells {
		refs = append(refs, ref)
	}
	return SortCellRefs(refs)
}

// buildGraph derives a fresh dependency graph from the current
// instructions. an edge u -> v exists iff v holds a formula that mentions u
// and u has an entry.
func (st *Storage) buildGraph() *DependencyGraph {
	graph := NewDependencyGraph()
	refs := st.refs()
	for _, ref := range refs {
		graph.GetOrCreateNode(ref)
	}

	for _, ref := range refs {
		formulaID, ok := st.formulas.GetFormulaAtCell(ref)
		if !ok {
			continue
		}
		precedents, _ := st.formulas.GetCellRefs(formulaID)
		for _, precedent := range precedents {
			if _, exists := st.cells[precedent]; exists {
				graph.AddEdge(precedent, ref)
			}
		}
	}
	return graph
}

// snapshot returns the current numeric values keyed by reference. cells
// without a value are left out and therefore read as 0.
func (st *Storage) snapshot() CellValues {
	values := make(CellValues, len(st.cells))
	for ref, cell := range st.cells {
		if cell.HasValue {
			values[ref] = cell.Value
		}
	}
	return values
}
