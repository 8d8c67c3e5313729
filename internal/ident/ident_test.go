package ident_test

import (
	"testing"

	"github.com/sourcelang/plc/internal/ident"
)

func TestAddAndFindLocal(t *testing.T) {
	tbl := ident.New()
	x := &ident.Identifier{Name: "x", Type: ident.TypeInt}
	if err := tbl.Add(x, false); err != nil {
		t.Fatal(err)
	}
	got, err := tbl.Find("x")
	if err != nil {
		t.Fatal(err)
	}
	if got != x {
		t.Errorf("Find returned a different identifier")
	}
}

func TestFindFallsBackToGlobalButNotIntermediateScopes(t *testing.T) {
	tbl := ident.New()
	g := &ident.Identifier{Name: "g", Type: ident.TypeInt}
	if err := tbl.Add(g, true); err != nil {
		t.Fatal(err)
	}

	prog := &ident.Identifier{Name: "p", Type: ident.TypeProgram}
	tbl.PushScope(prog) // depth 2: program body

	mid := &ident.Identifier{Name: "mid", Type: ident.TypeInt}
	if err := tbl.Add(mid, false); err != nil {
		t.Fatal(err)
	}

	fn := &ident.Identifier{Name: "f", Type: ident.TypeFunction}
	tbl.PushScope(fn) // depth 3: inside a procedure

	if _, err := tbl.Find("mid"); err == nil {
		t.Error("intermediate scope must not be visible from a deeper scope")
	}
	if _, err := tbl.Find("g"); err != nil {
		t.Error("global scope must remain visible from any depth")
	}
}

func TestAddGlobalRejectedPastProgramScope(t *testing.T) {
	tbl := ident.New()
	prog := &ident.Identifier{Name: "p", Type: ident.TypeProgram}
	tbl.PushScope(prog)
	fn := &ident.Identifier{Name: "f", Type: ident.TypeFunction}
	tbl.PushScope(fn)

	late := &ident.Identifier{Name: "late", Type: ident.TypeInt}
	if err := tbl.Add(late, true); err == nil {
		t.Error("expected global add to fail once more than two scopes exist")
	}
}

func TestAddGlobalRejectsShadowOfProgramScopeName(t *testing.T) {
	tbl := ident.New()
	prog := &ident.Identifier{Name: "p", Type: ident.TypeProgram}
	tbl.PushScope(prog)
	if err := tbl.Add(&ident.Identifier{Name: "x", Type: ident.TypeInt}, false); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Add(&ident.Identifier{Name: "x", Type: ident.TypeInt}, true); err == nil {
		t.Error("expected global add to fail when name exists in scope 1")
	}
}

func TestAddLocalRejectsCollisionInSameScope(t *testing.T) {
	tbl := ident.New()
	if err := tbl.Add(&ident.Identifier{Name: "x", Type: ident.TypeInt}, false); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Add(&ident.Identifier{Name: "x", Type: ident.TypeBool}, false); err == nil {
		t.Error("expected collision error")
	}
}

func TestLocationAndParamDirection(t *testing.T) {
	tbl := ident.New()
	g := &ident.Identifier{Name: "g", Type: ident.TypeInt}
	tbl.Add(g, true)

	n := 0
	_ = n
	r := ident.Identifier{Name: "r", Type: ident.TypeInt}
	fn := &ident.Identifier{
		Name: "f", Type: ident.TypeFunction,
		Params: []ident.Parameter{{Ident: &r, Direction: ident.DirOut}},
	}
	tbl.PushScope(fn)
	tbl.Add(&r, false)

	if loc := tbl.Location("g"); loc != ident.LocGlobal {
		t.Errorf("Location(g) = %s, want global", loc)
	}
	if loc := tbl.Location("r"); loc != ident.LocParam {
		t.Errorf("Location(r) = %s, want param", loc)
	}
	if dir, ok := tbl.ParamDirection("r"); !ok || dir != ident.DirOut {
		t.Errorf("ParamDirection(r) = %s, %v; want out, true", dir, ok)
	}

	local := &ident.Identifier{Name: "loc", Type: ident.TypeInt}
	tbl.Add(local, false)
	if loc := tbl.Location("loc"); loc != ident.LocLocal {
		t.Errorf("Location(loc) = %s, want local", loc)
	}
}

func TestCurrentOwnerNilAtGlobalScope(t *testing.T) {
	tbl := ident.New()
	if tbl.CurrentOwner() != nil {
		t.Error("CurrentOwner at global scope must be nil")
	}
}
