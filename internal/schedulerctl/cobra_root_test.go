package schedulerctl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSubmitCommandRequiresClassFlag(t *testing.T) {
	root := BuildRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"submit"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error when --class is omitted")
	}
}

func TestSubmitCommandPrintsTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(submitResponse{TaskID: 11})
	}))
	defer srv.Close()

	root := BuildRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"--server", srv.URL, "submit", "--class", "lm", "--priority", "high"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "task 11 submitted") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestStatusCommandRejectsNonNumericID(t *testing.T) {
	root := BuildRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"status", "not-a-number"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for non-numeric task id")
	}
}

func TestCancelCommandPrintsConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	root := BuildRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"--server", srv.URL, "cancel", "4"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "task 4 cancelled") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}
