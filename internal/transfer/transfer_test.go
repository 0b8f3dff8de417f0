package transfer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

var opts = Options{
	Location: time.UTC,
	Now:      func() time.Time { return time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC) },
}

func TestDecodeRejectsNonArray(t *testing.T) {
	for _, payload := range []string{`{"tasks": []}`, `"hello"`, ``, `[{"id": 1}`, `[1, 2]`} {
		_, err := Decode(strings.NewReader(payload), opts)
		if !errors.Is(err, model.ErrImportFormat) {
			t.Fatalf("payload %q: expected ErrImportFormat, got %v", payload, err)
		}
	}
}

func TestDecodeDatePartitionedShape(t *testing.T) {
	payload := `[
	  {"id": 1770624000000, "title": "Run", "category": "train", "date": "2026-02-09", "time": "7:30", "points": 25, "completed": true}
	]`
	tasks, err := Decode(strings.NewReader(payload), opts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := tasks[0]
	if got.ID != "1770624000000" || got.Category != model.CategoryExercise || got.Time != "07:30" || !got.Completed {
		t.Fatalf("unexpected task %+v", got)
	}
	if !got.CreatedAt.Equal(time.UnixMilli(1770624000000)) {
		t.Fatalf("expected createdAt from id, got %s", got.CreatedAt)
	}
}

func TestDecodeDeadlineShape(t *testing.T) {
	payload := `[
	  {"id": "a1", "title": "Report", "category": "gaming", "deadline": "2026-02-10T18:45", "createdAt": "2026-02-09T10:00:00Z"},
	  {"id": "a2", "title": "Call", "createdAt": "2026-02-08T21:15:00Z"}
	]`
	tasks, err := Decode(strings.NewReader(payload), opts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tasks[0].Date != "2026-02-10" || tasks[0].Time != "18:45" || tasks[0].Category != model.CategoryOther || tasks[0].Points != 10 {
		t.Fatalf("unexpected deadline mapping %+v", tasks[0])
	}
	if tasks[1].Date != "2026-02-08" || tasks[1].Time != "21:15" {
		t.Fatalf("expected date and time from createdAt, got %+v", tasks[1])
	}
}

func TestDecodeRejectsDuplicateIDs(t *testing.T) {
	payload := `[{"id": 7, "title": "a"}, {"id": "7", "title": "b"}]`
	if _, err := Decode(strings.NewReader(payload), opts); !errors.Is(err, model.ErrImportFormat) {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
	if _, err := Decode(strings.NewReader(`[{"title": "no id"}]`), opts); !errors.Is(err, model.ErrImportFormat) {
		t.Fatalf("expected missing id rejection, got %v", err)
	}
}

func TestEncodeIsIndentedArrayAndDecodable(t *testing.T) {
	tasks := []model.Task{{
		ID: "1770624000000", Title: "Read", Category: model.CategoryStudy, Date: "2026-02-09", Time: "09:00",
		Points: 30, CreatedAt: time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC),
	}}
	var buf bytes.Buffer
	if err := Encode(&buf, tasks); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "[\n  {\n    \"id\": \"1770624000000\"") {
		t.Fatalf("unexpected export layout:\n%s", buf.String())
	}

	back, err := Decode(&buf, opts)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(back) != 1 {
		t.Fatalf("expected one task, got %d", len(back))
	}
	got, want := back[0], tasks[0]
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("createdAt changed: %s vs %s", got.CreatedAt, want.CreatedAt)
	}
	got.CreatedAt = want.CreatedAt
	if got != want {
		t.Fatalf("export did not decode to the same task: %+v", got)
	}
}

func TestEncodeEmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}
