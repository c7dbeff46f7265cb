package main

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// glogLogger adapts glog to updater.Logger. Debug messages are logged at -v=1.
type glogLogger struct{}

func (glogLogger) Debug(msg string, kv ...interface{}) {
	if glog.V(1) {
		glog.InfoDepth(1, msg+formatKV(kv))
	}
}

func (glogLogger) Info(msg string, kv ...interface{}) {
	glog.InfoDepth(1, msg+formatKV(kv))
}

func (glogLogger) Error(msg string, kv ...interface{}) {
	glog.ErrorDepth(1, msg+formatKV(kv))
}

// formatKV renders key-value pairs as " k=v k=v".
func formatKV(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v=?", kv[i])
		}
	}
	return b.String()
}
