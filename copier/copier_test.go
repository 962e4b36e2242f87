package copier

import (
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/tsawler/pdfgraph/core"
	"github.com/tsawler/pdfgraph/logging"
)

// TestCopyScenario copies a dict whose values reach two indirect objects.
func TestCopyScenario(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	nested := src.Register(core.NewDict(core.DictEntry{Key: "Baz", Value: core.Name("wallykazam")}))
	arr := src.Register(core.Array{core.Number(1), nested})
	origin := core.NewDict(
		core.DictEntry{Key: "Foo", Value: core.String("stuff")},
		core.DictEntry{Key: "Bar", Value: arr},
	)

	copied, err := Copy(origin, src, dst)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}

	if dst.Len() != 2 {
		t.Fatalf("expected 2 destination objects, got %d", dst.Len())
	}
	if src.Len() != 2 {
		t.Errorf("source changed size: %d", src.Len())
	}

	dict, ok := copied.(*core.Dict)
	if !ok {
		t.Fatalf("expected *core.Dict, got %T", copied)
	}
	if dict == origin {
		t.Error("top-level dict should be a new value")
	}
	if s, _ := dict.GetString("Foo"); s != "stuff" {
		t.Errorf("Foo = %q", s)
	}

	barRef, ok := dict.GetIndirectRef("Bar")
	if !ok {
		t.Fatal("Bar should remain a reference")
	}
	copiedArr, err := core.LookupAs[core.Array](dst, barRef)
	if err != nil {
		t.Fatalf("lookup copied array: %v", err)
	}
	if n, _ := copiedArr.GetNumber(0); n != 1 {
		t.Errorf("array[0] = %v", n)
	}

	bazDict, err := core.LookupAs[*core.Dict](dst, copiedArr.Get(1))
	if err != nil {
		t.Fatalf("lookup copied nested dict: %v", err)
	}
	srcBaz, _ := core.LookupAs[*core.Dict](src, nested)
	if bazDict == srcBaz {
		t.Error("nested dict should be cloned")
	}
	if name, _ := bazDict.GetName("Baz"); name != core.Name("wallykazam") {
		t.Errorf("Baz = %v", name)
	}
}

// TestCopySharedObjectOnce checks that two paths to one object share a copy.
func TestCopySharedObjectOnce(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	shared := src.Register(core.String("font"))
	a := src.Register(core.NewDict(core.DictEntry{Key: "F", Value: shared}))
	b := src.Register(core.NewDict(core.DictEntry{Key: "F", Value: shared}))

	copied, err := Copy(core.Array{a, b, shared}, src, dst)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if dst.Len() != 3 {
		t.Fatalf("expected 3 destination objects, got %d", dst.Len())
	}

	arr := copied.(core.Array)
	da, _ := core.LookupAs[*core.Dict](dst, arr[0])
	db, _ := core.LookupAs[*core.Dict](dst, arr[1])
	fa, _ := da.GetIndirectRef("F")
	fb, _ := db.GetIndirectRef("F")
	if fa != fb || fa != arr[2] {
		t.Errorf("shared object copied more than once: %v %v %v", fa, fb, arr[2])
	}
}

// TestCopyCycle checks that a reference cycle terminates.
func TestCopyCycle(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	parentRef := src.NextRef()
	kid := src.Register(core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("Page")},
		core.DictEntry{Key: "Parent", Value: parentRef},
	))
	src.Assign(parentRef, core.NewDict(
		core.DictEntry{Key: "Type", Value: core.Name("Pages")},
		core.DictEntry{Key: "Kids", Value: core.Array{kid}},
	))

	copied, err := Copy(kid, src, dst)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if dst.Len() != 2 {
		t.Fatalf("expected 2 destination objects, got %d", dst.Len())
	}

	page, _ := core.LookupAs[*core.Dict](dst, copied)
	parent, err := core.LookupAs[*core.Dict](dst, page.Get("Parent"))
	if err != nil {
		t.Fatalf("lookup parent: %v", err)
	}
	kids, _ := parent.GetArray("Kids")
	if kids.Get(0) != copied {
		t.Errorf("cycle not re-pointed: kids[0] = %v, page = %v", kids.Get(0), copied)
	}
}

// TestCopyStream checks that stream data is cloned.
func TestCopyStream(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	data := []byte("BT /F1 12 Tf ET")
	ref := src.Register(core.NewStream(core.NewDict(core.DictEntry{Key: "Filter", Value: core.Name("None")}), data))

	copied, err := Copy(ref, src, dst)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	stream, err := core.LookupAs[*core.Stream](dst, copied)
	if err != nil {
		t.Fatalf("lookup stream: %v", err)
	}
	if string(stream.Data) != string(data) {
		t.Errorf("data = %q", stream.Data)
	}
	stream.Data[0] = 'X'
	if data[0] != 'B' {
		t.Error("copy shares stream data with the source")
	}
}

// TestCopyPrimitive checks that scalars pass through unchanged.
func TestCopyPrimitive(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	tests := []struct {
		name string
		obj  core.Object
	}{
		{"Bool", core.Bool(true)},
		{"Number", core.Number(3.14)},
		{"String", core.String("hello")},
		{"HexString", core.HexString("414243")},
		{"Name", core.Name("Test")},
		{"Null", core.Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			copied, err := Copy(tt.obj, src, dst)
			if err != nil {
				t.Fatalf("copy failed: %v", err)
			}
			if copied != tt.obj {
				t.Errorf("primitive changed: %v -> %v", tt.obj, copied)
			}
		})
	}
	if dst.Len() != 0 {
		t.Errorf("primitives should not allocate, got %d objects", dst.Len())
	}
}

// TestCopyDanglingRef checks that an unresolvable ref is an error.
func TestCopyDanglingRef(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	_, err := Copy(core.Array{core.Ref(99)}, src, dst)
	var notFound *core.ObjectNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ObjectNotFoundError, got %v", err)
	}
	if notFound.Ref != core.Ref(99) {
		t.Errorf("ref = %v", notFound.Ref)
	}
}

// TestCopyObjectNumberLimit checks that a full destination fails cleanly.
func TestCopyObjectNumberLimit(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()
	ref := src.Register(core.Name("Font"))
	dst.Assign(core.Ref(core.MaxObjectNumber), core.Null{})

	_, err := Copy(ref, src, dst)
	var limit *core.ObjectNumberError
	if !errors.As(err, &limit) {
		t.Fatalf("expected ObjectNumberError, got %v", err)
	}
	if dst.Len() != 1 {
		t.Errorf("dst.Len() = %d, want 1", dst.Len())
	}
}

// TestCopyMaxDepth checks the nesting guard.
func TestCopyMaxDepth(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()

	var obj core.Object = core.Number(0)
	for i := 0; i < 10; i++ {
		obj = core.Array{obj}
	}

	if _, err := New(src, dst, WithMaxDepth(5)).Copy(obj); err == nil {
		t.Fatal("expected depth error")
	} else if !strings.Contains(err.Error(), "maximum nesting depth") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := New(src, dst).Copy(obj); err != nil {
		t.Errorf("default depth should allow 10 levels: %v", err)
	}
}

// TestCopyMemoPerCall checks that separate calls do not share a memo.
func TestCopyMemoPerCall(t *testing.T) {
	src := core.NewContext()
	dst := core.NewContext()
	ref := src.Register(core.Number(7))

	c := New(src, dst)
	first, err := c.Copy(ref)
	if err != nil {
		t.Fatalf("first copy: %v", err)
	}
	second, err := c.Copy(ref)
	if err != nil {
		t.Fatalf("second copy: %v", err)
	}
	if first == second {
		t.Error("each call should allocate its own destination ref")
	}
	if dst.Len() != 2 {
		t.Errorf("expected 2 destination objects, got %d", dst.Len())
	}
}

func TestCopyLogsCount(t *testing.T) {
	h := logging.NewBufferedLogHandler(nil)
	logging.SetLogger(slog.New(h))
	defer logging.SetLogger(nil)

	src := core.NewContext()
	ref := src.Register(core.Array{src.Register(core.Null{})})
	if _, err := Copy(ref, src, core.NewContext()); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !h.Contains(`indirectObjects=2`) {
		t.Errorf("copy count not logged: %s", h.String())
	}
}
