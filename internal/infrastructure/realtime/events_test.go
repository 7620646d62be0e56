package realtime

import (
	"testing"

	"github.com/taskflow/client/domain"
)

func TestDecodeCreatedCarriesFullTask(t *testing.T) {
	payload := []byte(`{"event":"task_created","data":{"id":42,"title":"Ship it","priority":"High","status":"ToDo"}}`)

	ev, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != domain.EventTaskCreated {
		t.Fatalf("expected task_created, got %q", ev.Kind)
	}
	if ev.Task == nil || ev.Task.ID != 42 || ev.Task.Title != "Ship it" {
		t.Fatalf("task not decoded: %+v", ev.Task)
	}
}

func TestDecodeUpdatedCarriesFullTask(t *testing.T) {
	payload := []byte(`{"event":"task_updated","data":{"id":7,"status":"Done"}}`)

	ev, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != domain.EventTaskUpdated {
		t.Fatalf("expected task_updated, got %q", ev.Kind)
	}
	if ev.Task == nil || ev.Task.Status != domain.StatusDone {
		t.Fatalf("task not decoded: %+v", ev.Task)
	}
}

func TestDecodeDeletedBareID(t *testing.T) {
	ev, err := decodeEvent([]byte(`{"event":"task_deleted","data":19}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != domain.EventTaskDeleted || ev.TaskID != 19 {
		t.Fatalf("expected deleted id 19, got %+v", ev)
	}
}

func TestDecodeDeletedWrappedID(t *testing.T) {
	ev, err := decodeEvent([]byte(`{"event":"task_deleted","data":{"id":19}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.TaskID != 19 {
		t.Fatalf("expected deleted id 19, got %d", ev.TaskID)
	}
}

func TestDecodeUnknownEventPassesThrough(t *testing.T) {
	ev, err := decodeEvent([]byte(`{"event":"server_notice","data":{"text":"maintenance"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Kind != domain.EventKind("server_notice") {
		t.Fatalf("unexpected kind %q", ev.Kind)
	}
	if ev.Task != nil {
		t.Fatal("unknown events must not carry a task")
	}
}

func TestDecodeMalformedEnvelope(t *testing.T) {
	if _, err := decodeEvent([]byte(`not json`)); err == nil {
		t.Fatal("expected an error for malformed payload")
	}
}
