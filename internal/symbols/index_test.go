package symbols

import "testing"

func TestIndexFirstDeclarationWins(t *testing.T) {
	ix := NewIndex()
	ix.add(SymbolRange{Path: "Checkout.submit", Start: 10, End: 20, Kind: "method"})
	ix.add(SymbolRange{Path: "Checkout.submit", Start: 30, End: 40, Kind: "method"})

	if ix.Len() != 1 {
		t.Fatalf("Expected 1 symbol, got %d", ix.Len())
	}
	r, ok := ix.Range("Checkout.submit")
	if !ok {
		t.Fatal("Expected the symbol to be indexed")
	}
	if r.Start != 10 {
		t.Errorf("Expected the first declaration kept, got start %d", r.Start)
	}
}

func TestInnermostAtPrefersDeeperPath(t *testing.T) {
	ix := NewIndex()
	ix.add(SymbolRange{Path: "Checkout", Start: 1, End: 50, Kind: "class"})
	ix.add(SymbolRange{Path: "Checkout.submit", Start: 10, End: 20, Kind: "method"})
	ix.add(SymbolRange{Path: "Checkout.refund", Start: 25, End: 35, Kind: "method"})

	r, ok := ix.InnermostAt(15)
	if !ok {
		t.Fatal("Expected a containing symbol")
	}
	if r.Path != "Checkout.submit" {
		t.Errorf("Expected the nested method, got %q", r.Path)
	}

	r, ok = ix.InnermostAt(22)
	if !ok {
		t.Fatal("Expected the class to contain line 22")
	}
	if r.Path != "Checkout" {
		t.Errorf("Expected the class between methods, got %q", r.Path)
	}
}

func TestInnermostAtOutsideAnySymbol(t *testing.T) {
	ix := NewIndex()
	ix.add(SymbolRange{Path: "main", Start: 5, End: 9, Kind: "function"})

	if _, ok := ix.InnermostAt(1); ok {
		t.Error("Expected no symbol before the first declaration")
	}
	if _, ok := ix.InnermostAt(100); ok {
		t.Error("Expected no symbol past the last declaration")
	}
}

func TestInnermostAtBoundariesInclusive(t *testing.T) {
	ix := NewIndex()
	ix.add(SymbolRange{Path: "main", Start: 5, End: 9, Kind: "function"})

	for _, line := range []int{5, 9} {
		if _, ok := ix.InnermostAt(line); !ok {
			t.Errorf("Expected line %d inside the inclusive range", line)
		}
	}
}

func TestAllPreservesDeclarationOrder(t *testing.T) {
	ix := NewIndex()
	ix.add(SymbolRange{Path: "b", Start: 1, End: 2})
	ix.add(SymbolRange{Path: "a", Start: 3, End: 4})

	all := ix.All()
	if len(all) != 2 || all[0].Path != "b" || all[1].Path != "a" {
		t.Errorf("Expected declaration order [b a], got %v", all)
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := NewIndex()
	if ix.Len() != 0 {
		t.Errorf("Expected empty index, got %d", ix.Len())
	}
	if _, ok := ix.InnermostAt(1); ok {
		t.Error("Expected no symbol in an empty index")
	}
}
