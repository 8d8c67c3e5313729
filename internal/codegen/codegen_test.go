package codegen_test

import (
	"os"
	"strings"
	"testing"

	"github.com/sourcelang/plc/internal/codegen"
	"github.com/sourcelang/plc/internal/ident"
)

func TestGetRegIsMonotoneAndOnlyIncrementsWhenAsked(t *testing.T) {
	g := codegen.New()
	if r := g.GetReg(false); r != 0 {
		t.Fatalf("GetReg(false) = %d, want 0", r)
	}
	if r := g.GetReg(false); r != 0 {
		t.Fatalf("GetReg(false) repeated = %d, want 0 (no mint)", r)
	}
	if r := g.GetReg(true); r != 0 {
		t.Fatalf("GetReg(true) = %d, want 0", r)
	}
	if r := g.GetReg(true); r != 1 {
		t.Fatalf("GetReg(true) second call = %d, want 1", r)
	}
}

func TestGetLabelIDNeverResetsAcrossProcedures(t *testing.T) {
	g := codegen.New()
	first := g.GetLabelID()
	g.GenerateProcedureEntry("f", g.GetLabelID(), false)
	second := g.GetLabelID()
	if second <= first {
		t.Errorf("label ids must be monotone across procedure boundaries: %d then %d", first, second)
	}
}

func TestGetMMTracksParamsAndLocalsSeparately(t *testing.T) {
	g := codegen.New()
	g.ResetLocalPtr()
	g.ResetParamPtr()

	if a := g.GetMM(nil, false); a != 0 {
		t.Fatalf("first local offset = %d, want 0", a)
	}
	if a := g.GetMM(nil, false); a != 1 {
		t.Fatalf("second local offset = %d, want 1", a)
	}
	if a := g.GetMM(nil, true); a != 0 {
		t.Fatalf("first param offset = %d, want 0 (independent pointer)", a)
	}

	size := 4
	if a := g.GetMM(&size, false); a != 2 {
		t.Fatalf("array local offset = %d, want 2", a)
	}
	if a := g.GetMM(nil, false); a != 6 {
		t.Fatalf("offset after array local = %d, want 6", a)
	}
}

func TestGenerateIndentsByCurrentLevel(t *testing.T) {
	g := codegen.New()
	g.Generate("top")
	g.TabPush()
	g.Generate("nested")
	g.TabPush()
	g.Generate("deeper")
	g.TabPop()
	g.Generate("back to nested")
	g.TabPop()
	g.Generate("top again")

	lines := g.Lines()
	want := []string{"top", "\tnested", "\t\tdeeper", "\tback to nested", "top again"}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestCommentOnlyEmitsWhenDebugIsSet(t *testing.T) {
	g := codegen.New()
	g.Comment("hidden", false)
	g.Comment("visible", true)

	lines := g.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected exactly one emitted line, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "// ") || !strings.Contains(lines[0], "visible") {
		t.Errorf("comment line = %q", lines[0])
	}
}

func TestGenerateProgramEntryJumpsOverDeclarations(t *testing.T) {
	g := codegen.New()
	g.GenerateProgramEntry("p", 1, false)
	joined := strings.Join(g.Lines(), "\n")
	if !strings.Contains(joined, "p_1:") {
		t.Errorf("missing entry label: %s", joined)
	}
	if !strings.Contains(joined, "goto p_1_body;") {
		t.Errorf("missing skip-to-body jump: %s", joined)
	}
}

func TestGenerateOperationWidensMixedOperandTypes(t *testing.T) {
	g := codegen.New()
	dst := g.GenerateOperation("+", 0, ident.TypeInt, 1, ident.TypeFloat, false)
	if dst != 0 {
		t.Fatalf("GenerateOperation must return r1, got %d", dst)
	}
	joined := strings.Join(g.Lines(), "\n")
	if !strings.Contains(joined, "R[0] = (float)R[0];") {
		t.Errorf("expected widening cast on r1, got: %s", joined)
	}
	if !strings.Contains(joined, "R[0] = R[0] + R[1];") {
		t.Errorf("expected binary op line, got: %s", joined)
	}
}

func TestGenerateOperationNoWideningForMatchedTypes(t *testing.T) {
	g := codegen.New()
	g.GenerateOperation("-", 2, ident.TypeInt, 3, ident.TypeInt, false)
	joined := strings.Join(g.Lines(), "\n")
	if strings.Contains(joined, "(float)") {
		t.Errorf("no widening expected between two ints, got: %s", joined)
	}
}

func TestGenerateNameUsesLocationAppropriateBase(t *testing.T) {
	cases := []struct {
		loc  ident.Location
		want string
	}{
		{ident.LocGlobal, "R[GB]"},
		{ident.LocParam, "R[FP]"},
		{ident.LocLocal, "R[SP]"},
	}
	for _, c := range cases {
		g := codegen.New()
		id := &ident.Identifier{Name: "x", Type: ident.TypeInt, Address: 3}
		reg := g.GenerateName(id, c.loc, nil, false)
		joined := strings.Join(g.Lines(), "\n")
		if !strings.Contains(joined, c.want) {
			t.Errorf("location %s: expected base %s in %q", c.loc, c.want, joined)
		}
		if !strings.Contains(joined, "R["+itoa(reg)+"] = MEM[") {
			t.Errorf("expected mint+load for register %d, got %q", reg, joined)
		}
	}
}

func TestGenerateNameIndexesArraysByRegister(t *testing.T) {
	g := codegen.New()
	id := &ident.Identifier{Name: "arr", Type: ident.TypeInt, Address: 0}
	idx := 5
	g.GenerateName(id, ident.LocLocal, &idx, false)
	joined := strings.Join(g.Lines(), "\n")
	if !strings.Contains(joined, "+ R[5]") {
		t.Errorf("expected index register folded into address, got %q", joined)
	}
}

func TestCommitWritesAccumulatedLines(t *testing.T) {
	g := codegen.New()
	g.Generate("a")
	g.Generate("b")

	dir := t.TempDir() + "/out.c"
	if err := g.Commit(dir); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a\nb\n" {
		t.Errorf("committed file = %q, want %q", got, "a\nb\n")
	}
}

func TestWithTabWidthRendersSpacesInsteadOfTabs(t *testing.T) {
	g := codegen.New(codegen.WithTabWidth(2))
	g.TabPush()
	g.Generate("x = 1;")
	joined := strings.Join(g.Lines(), "\n")
	if !strings.Contains(joined, "  x = 1;") {
		t.Errorf("expected a 2-space indent, got %q", joined)
	}
	if strings.Contains(joined, "\tx") {
		t.Errorf("tab width override should replace the literal tab, got %q", joined)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
