package ct

import (
	"errors"
	"io"
)

// errStageAborted is what the producing stage sees when the consuming stage
// gave up first. A producer error wrapping it is a consequence, not a cause.
var errStageAborted = errors.New("pipeline stage aborted")

// runPipeline runs produce in its own goroutine and consume on the calling
// goroutine, joined by an io.Pipe. Nothing is buffered beyond the pipe's
// single in-flight write, so memory use does not depend on stream size.
//
// When consume succeeds, whatever it left unread is drained so the producer
// runs to completion and can report errors in the trailing bytes. The
// producer goroutine has always exited when runPipeline returns.
func runPipeline(produce func(w io.Writer) error, consume func(r io.Reader) error) (produceErr, consumeErr error) {
	pr, pw := io.Pipe()
	produceErrCh := make(chan error, 1)
	go func() {
		err := produce(pw)
		pw.CloseWithError(err)
		produceErrCh <- err
	}()

	consumeErr = consume(pr)
	if consumeErr == nil {
		// Read errors here are the producer's and come back on the channel.
		_, _ = io.Copy(io.Discard, pr)
	}
	pr.CloseWithError(errStageAborted) // unblock the producer if consume stopped early
	produceErr = <-produceErrCh

	return produceErr, consumeErr
}

// isCause reports whether err is a real failure of its own stage rather
// than the echo of the other stage aborting.
func isCause(err error) bool {
	return err != nil && !errors.Is(err, errStageAborted)
}
