package safeword

import (
	"errors"
	"strings"
	"syscall"
	"testing"
)

func TestReason_String(t *testing.T) {
	tests := []struct {
		reason Reason
		want   string
	}{
		{StoppedBySignal, "stopped_by_signal"},
		{WorkloadFinished, "workload_finished"},
		{WorkloadFailed, "workload_failed"},
		{SetupFailed, "setup_failed"},
		{SignalWatchFailed, "signal_watch_failed"},
		{Reason(99), "reason(99)"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("Reason(%d).String() = %q, want %q", int(tt.reason), got, tt.want)
		}
	}
}

func TestOutcome_Stopped(t *testing.T) {
	stopped := Outcome[int]{Reason: StoppedBySignal, Signal: syscall.SIGTERM}
	if !stopped.Stopped() {
		t.Error("StoppedBySignal outcome should report Stopped")
	}

	finished := Outcome[int]{Reason: WorkloadFinished, Value: 1}
	if finished.Stopped() {
		t.Error("WorkloadFinished outcome should not report Stopped")
	}
}

func TestOutcome_Failure(t *testing.T) {
	underlying := errors.New("disk full")

	tests := []struct {
		name    string
		outcome Outcome[int]
		wantNil bool
		wantIs  error
	}{
		{"signal is success", Outcome[int]{Reason: StoppedBySignal}, true, nil},
		{"finished is failure", Outcome[int]{Reason: WorkloadFinished, Value: 42}, false, nil},
		{"workload error wrapped", Outcome[int]{Reason: WorkloadFailed, Err: underlying}, false, underlying},
		{"setup error wrapped", Outcome[int]{Reason: SetupFailed, Err: underlying}, false, underlying},
		{"watch error wrapped", Outcome[int]{Reason: SignalWatchFailed, Err: underlying}, false, underlying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outcome.Failure()
			if tt.wantNil {
				if err != nil {
					t.Fatalf("Failure() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Failure() = nil, want error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Failure() = %v, want wrapped %v", err, tt.wantIs)
			}
		})
	}
}

func TestOutcome_Failure_FinishedMentionsValue(t *testing.T) {
	out := Outcome[int]{Reason: WorkloadFinished, Value: 42}
	if err := out.Failure(); err == nil || !strings.Contains(err.Error(), "42") {
		t.Errorf("Failure() = %v, want message mentioning the value", err)
	}
}
