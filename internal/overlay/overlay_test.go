package overlay_test

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/lh/pagedeck/internal/overlay"
	"github.com/lh/pagedeck/pkg/pageindex"
)

func TestSetDraft(t *testing.T) {
	o := overlay.New()

	if o.HasDraft() {
		t.Error("HasDraft() = true for new overlay")
	}

	o.SetDraft([]byte("draft"))
	if !o.HasDraft() {
		t.Error("HasDraft() = false after SetDraft")
	}

	o.SetDraft(nil)
	if o.HasDraft() {
		t.Error("HasDraft() = true after clearing")
	}
}

func TestSetDraft_Replaces(t *testing.T) {
	o := overlay.New()

	o.SetDraft([]byte("first"))
	o.SetDraft([]byte("second"))

	if got := o.Finalize(); !bytes.Equal(got, []byte("second")) {
		t.Errorf("Finalize() = %q, want %q", got, "second")
	}
}

func TestSetDraft_ClonesInput(t *testing.T) {
	o := overlay.New()

	buf := []byte("draft")
	o.SetDraft(buf)
	buf[0] = 'x'

	if got := o.Finalize(); !bytes.Equal(got, []byte("draft")) {
		t.Errorf("Finalize() = %q, want %q", got, "draft")
	}
}

func TestCompose(t *testing.T) {
	o := overlay.New()
	saved := [][]byte{[]byte("a"), []byte("b")}

	o.SetDraft([]byte("draft"))

	combined, r := o.Compose(saved)

	want := [][]byte{[]byte("a"), []byte("b"), []byte("draft")}
	if !reflect.DeepEqual(combined, want) {
		t.Errorf("Compose() = %v, want %v", combined, want)
	}

	wantRange := pageindex.Range{Start: 2, End: 3}
	if r != wantRange {
		t.Errorf("Compose() range = %v, want %v", r, wantRange)
	}

	if len(saved) != 2 {
		t.Errorf("Compose() modified saved sequence, len = %d", len(saved))
	}
}

func TestCompose_NoDraft(t *testing.T) {
	o := overlay.New()
	saved := [][]byte{[]byte("a")}

	combined, r := o.Compose(saved)

	if !reflect.DeepEqual(combined, saved) {
		t.Errorf("Compose() = %v, want saved unchanged", combined)
	}
	if !r.Empty() {
		t.Errorf("Compose() range = %v, want empty", r)
	}
}

func TestCompose_Repeatable(t *testing.T) {
	o := overlay.New()
	saved := [][]byte{[]byte("a")}

	o.SetDraft([]byte("draft"))

	first, _ := o.Compose(saved)
	second, _ := o.Compose(saved)

	if len(first) != 2 || len(second) != 2 {
		t.Errorf("repeated Compose() grew result: %d then %d pages", len(first), len(second))
	}
}

func TestProvisionalRange(t *testing.T) {
	o := overlay.New()

	if r := o.ProvisionalRange(5); !r.Empty() {
		t.Errorf("ProvisionalRange() = %v without draft, want empty", r)
	}

	o.SetDraft([]byte("draft"))

	want := pageindex.Range{Start: 5, End: 6}
	if r := o.ProvisionalRange(5); r != want {
		t.Errorf("ProvisionalRange() = %v, want %v", r, want)
	}
}

func TestFinalize_Empty(t *testing.T) {
	o := overlay.New()

	if got := o.Finalize(); got != nil {
		t.Errorf("Finalize() = %v without draft, want nil", got)
	}
}
