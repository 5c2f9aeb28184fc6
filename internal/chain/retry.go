package chain

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// Class tells the retry loop whether another attempt can change the outcome.
type Class string

const (
	ClassTerminal  Class = "terminal"
	ClassTransient Class = "transient"
)

// Decision is the classification of one failed call.
type Decision struct {
	Class  Class
	Reason string
}

func (d Decision) Retryable() bool {
	return d.Class == ClassTransient
}

// JSON-RPC error codes that no retry will fix.
const (
	codeExecutionReverted = 3
	codeMethodNotFound    = -32601
	codeInvalidParams     = -32602
)

// Providers phrase range and result-size limits differently; all of them reject the same
// request again.
var rejectedQueryTokens = []string{
	"block range",
	"range too large",
	"range is too large",
	"exceed maximum block range",
	"exceeds max block range",
	"query returned more than",
	"more than 10000 results",
	"response size exceeded",
	"response size should not",
	"too many logs",
}

// Classify sorts an RPC error into terminal or transient. Unknown errors are transient since
// most of them are transport failures.
func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassTerminal, Reason: "nil_error"}
	}
	if errors.Is(err, context.Canceled) {
		return Decision{Class: ClassTerminal, Reason: "context_canceled"}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "execution reverted") {
		return Decision{Class: ClassTerminal, Reason: "execution_reverted"}
	}
	for _, token := range rejectedQueryTokens {
		if strings.Contains(msg, token) {
			return Decision{Class: ClassTerminal, Reason: "query_rejected"}
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeExecutionReverted:
			return Decision{Class: ClassTerminal, Reason: "execution_reverted"}
		case codeMethodNotFound, codeInvalidParams:
			return Decision{Class: ClassTerminal, Reason: "jsonrpc_request"}
		}
		return Decision{Class: ClassTransient, Reason: "jsonrpc_server"}
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		code := httpErr.StatusCode
		if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500 {
			return Decision{Class: ClassTransient, Reason: "http_" + http.StatusText(code)}
		}
		return Decision{Class: ClassTerminal, Reason: "http_" + http.StatusText(code)}
	}

	return Decision{Class: ClassTransient, Reason: "unclassified"}
}

// withRetry runs fn until it succeeds, fails terminally, or maxRetries extra attempts are
// spent. The wait doubles after every transient failure.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	var err error
	for attempt, delay := 0, baseDelay; ; attempt, delay = attempt+1, delay*2 {
		if err = fn(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt >= maxRetries || !Classify(err).Retryable() {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
