package main

import (
	"github.com/mgnsk/strqueue"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	q, err := strqueue.New(strqueue.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer q.Free()

	for _, v := range []string{"gerbil", "bear", "gerbil", "dolphin"} {
		if err := q.InsertTail(v); err != nil {
			panic(err)
		}
	}

	// Duplicates are only detected in a sorted queue.
	q.Sort()
	if err := q.DeleteDup(); err != nil {
		panic(err)
	}

	// Removed elements belong to the caller until released.
	buf := make([]byte, 64)
	e, err := q.RemoveHead(buf)
	if err != nil {
		panic(err)
	}
	defer strqueue.ReleaseElement(e)

	logger.Info("removed", zap.String("value", e.Value()), zap.Strings("remaining", q.Values()))
}
