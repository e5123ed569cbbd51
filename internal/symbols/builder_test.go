//go:build cgo

package symbols

import (
	"context"
	"testing"
)

const goFixture = `package cart

type Cart struct {
	items []string
}

func (c *Cart) Add(item string) {
	c.items = append(c.items, item)
}

func Total(c *Cart) int {
	return len(c.items)
}
`

func TestBuildGoSource(t *testing.T) {
	ix := NewIndexer().Build(context.Background(), "cart.go", []byte(goFixture))

	if ix.Len() == 0 {
		t.Fatal("Expected symbols from Go source")
	}
	if _, ok := ix.Range("Cart"); !ok {
		t.Error("Expected the Cart type indexed")
	}
	if _, ok := ix.Range("Add"); !ok {
		t.Error("Expected the Add method indexed")
	}
	total, ok := ix.Range("Total")
	if !ok {
		t.Fatal("Expected the Total function indexed")
	}
	if total.Kind != "function" {
		t.Errorf("Expected function kind, got %q", total.Kind)
	}
	if total.Start != 11 || total.End != 13 {
		t.Errorf("Expected Total spanning lines 11-13, got %d-%d", total.Start, total.End)
	}
}

func TestBuildPythonNesting(t *testing.T) {
	source := `class Checkout:
    def submit(self):
        return True

def standalone():
    pass
`
	ix := NewIndexer().Build(context.Background(), "checkout.py", []byte(source))

	if _, ok := ix.Range("Checkout"); !ok {
		t.Error("Expected the class indexed")
	}
	if _, ok := ix.Range("Checkout.submit"); !ok {
		t.Error("Expected the nested method under a dotted path")
	}
	if _, ok := ix.Range("standalone"); !ok {
		t.Error("Expected the top-level function indexed")
	}

	sym, ok := ix.InnermostAt(3)
	if !ok || sym.Path != "Checkout.submit" {
		t.Errorf("Expected line 3 inside Checkout.submit, got %q (ok=%v)", sym.Path, ok)
	}
}

func TestBuildUnsupportedExtension(t *testing.T) {
	ix := NewIndexer().Build(context.Background(), "notes.txt", []byte("just text\n"))
	if ix.Len() != 0 {
		t.Errorf("Expected an empty index for unsupported files, got %d symbols", ix.Len())
	}
}

func TestBuildMalformedSourceDegrades(t *testing.T) {
	ix := NewIndexer().Build(context.Background(), "broken.go", []byte("func ((( nope"))
	// Whatever tree-sitter salvages is acceptable; the call must not fail.
	_ = ix.All()
}
