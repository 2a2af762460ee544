package ct

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestRunPipeline_Success(t *testing.T) {
	payload := strings.Repeat("stream data ", 100000)
	var got bytes.Buffer

	produceErr, consumeErr := runPipeline(
		func(w io.Writer) error {
			_, err := io.Copy(w, strings.NewReader(payload))
			return err
		},
		func(r io.Reader) error {
			_, err := io.Copy(&got, r)
			return err
		},
	)

	if produceErr != nil || consumeErr != nil {
		t.Fatalf("runPipeline() = %v, %v", produceErr, consumeErr)
	}
	if got.String() != payload {
		t.Errorf("consumer got %d bytes, want %d", got.Len(), len(payload))
	}
}

func TestRunPipeline_ProducerFails(t *testing.T) {
	boom := errors.New("boom")

	produceErr, consumeErr := runPipeline(
		func(w io.Writer) error {
			if _, err := w.Write([]byte("partial")); err != nil {
				return err
			}
			return boom
		},
		func(r io.Reader) error {
			_, err := io.ReadAll(r)
			return err
		},
	)

	if !errors.Is(produceErr, boom) || !isCause(produceErr) {
		t.Errorf("produceErr = %v, want %v as cause", produceErr, boom)
	}
	if !errors.Is(consumeErr, boom) {
		t.Errorf("consumeErr = %v, want the producer's error", consumeErr)
	}
}

func TestRunPipeline_ConsumerFailsEarly(t *testing.T) {
	boom := errors.New("boom")

	produceErr, consumeErr := runPipeline(
		func(w io.Writer) error {
			// would block forever if the pipe were not closed
			for {
				if _, err := w.Write(make([]byte, 4096)); err != nil {
					return err
				}
			}
		},
		func(r io.Reader) error {
			buf := make([]byte, 10)
			if _, err := r.Read(buf); err != nil {
				return err
			}
			return boom
		},
	)

	if !errors.Is(consumeErr, boom) {
		t.Errorf("consumeErr = %v, want %v", consumeErr, boom)
	}
	if isCause(produceErr) {
		t.Errorf("produceErr = %v, want an aborted-stage echo", produceErr)
	}
}

func TestRunPipeline_DrainsAfterConsumerStops(t *testing.T) {
	trailing := errors.New("bad trailer")

	produceErr, consumeErr := runPipeline(
		func(w io.Writer) error {
			if _, err := w.Write([]byte("header")); err != nil {
				return err
			}
			if _, err := w.Write([]byte("rest of stream")); err != nil {
				return err
			}
			return trailing
		},
		func(r io.Reader) error {
			// reads only what it needs and returns successfully
			_, err := io.ReadFull(r, make([]byte, 6))
			return err
		},
	)

	if consumeErr != nil {
		t.Fatalf("consumeErr = %v", consumeErr)
	}
	if !errors.Is(produceErr, trailing) {
		t.Errorf("produceErr = %v, want %v from the drained tail", produceErr, trailing)
	}
}

func TestIsCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("x"), want: true},
		{name: "aborted", err: errStageAborted, want: false},
		{name: "wrapped aborted", err: errors.Join(errors.New("writing"), errStageAborted), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCause(tt.err); got != tt.want {
				t.Errorf("isCause(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
