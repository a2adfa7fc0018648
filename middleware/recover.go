package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// RecoverHandler logs a panic raised by a handler and answers 500. With
// verbose set the panic value and stack go back to the client as plain text;
// otherwise the client sees a generic JSON message.
func RecoverHandler(logger *zap.Logger, verbose bool) restful.RecoverHandleFunction {
	logger = logger.Named("recover")
	return func(reason interface{}, w http.ResponseWriter) {
		stack := debug.Stack()
		logger.Error("Recovered from panic", zap.Any("panic", reason), zap.ByteString("stack", stack))

		if verbose {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = fmt.Fprintf(w, "panic: %v\n\n%s", reason, stack)
			return
		}
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"An internal error occurred"}`))
	}
}
