package rx

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "rx")

// ErrEmpty is returned by First when the stream completes without a value.
var ErrEmpty = errors.New("rx: stream completed without a value")

// RuntimeErr carries a panic recovered from a producer, an operator function
// or a consumer callback.
type RuntimeErr struct {
	err error
}

func RuntimeError(v interface{}) error {
	if err, ok := v.(error); ok {
		return RuntimeErr{errors.WithStack(err)}
	}
	return RuntimeErr{errors.Errorf("runtime-error: %v", v)}
}

func (e RuntimeErr) Error() string {
	return e.err.Error()
}

func (e RuntimeErr) Unwrap() error {
	return errors.Cause(e.err)
}

// Format prints the captured stack with %+v.
func (e RuntimeErr) Format(s fmt.State, verb rune) {
	if f, ok := e.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, e.err.Error())
}

var (
	errorHandlerMu sync.RWMutex
	errorHandler   = func(err error) {
		log.WithError(err).Error("rx: unhandled error")
	}
)

// SetErrorHandler replaces the collaborator that receives errors no consumer
// handled. It returns a func restoring the previous handler.
func SetErrorHandler(handler func(error)) (restore func()) {
	errorHandlerMu.Lock()
	defer errorHandlerMu.Unlock()
	previous := errorHandler
	errorHandler = handler
	return func() {
		errorHandlerMu.Lock()
		defer errorHandlerMu.Unlock()
		errorHandler = previous
	}
}

func handleError(err error) {
	errorHandlerMu.RLock()
	handler := errorHandler
	errorHandlerMu.RUnlock()
	if handler != nil {
		handler(err)
	}
}

// safeCall runs f and reports a panic to the error handler.
func safeCall(f func()) {
	defer func() {
		if r := recover(); r != nil {
			handleError(RuntimeError(r))
		}
	}()
	f()
}

// try runs f and returns a recovered panic as a RuntimeErr.
func try(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RuntimeError(r)
		}
	}()
	f()
	return nil
}
