package logger_test

import (
	"fmt"

	"github.com/nwerner/alog/core"
	"github.com/nwerner/alog/logger"
	"github.com/nwerner/alog/sink"
)

func Example() {
	out := sink.NewCaptureSink()

	log, err := logger.NewBuilder().
		WithSink(out).
		WithLevel(core.InfoLevel).
		WithFlushLevel(core.ErrorLevel).
		Build()
	if err != nil {
		panic(err)
	}

	log.Info("service starting")
	log.Errorf("backend unreachable after %d retries", 3)

	// Close drains everything still buffered before returning.
	log.Close()

	fmt.Println(len(out.Texts()), "lines reached the sink")
	// Output: 2 lines reached the sink
}
