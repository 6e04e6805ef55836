package relay

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// keepAliveInterval keeps idle streams open through proxies.
const keepAliveInterval = 15 * time.Second

// SSEHandler streams broker events as server-sent events. Clients may
// filter with ?kinds=live,status. Browsers are told to retry after 5s,
// the same fixed delay the live channel uses, and resume from the
// Last-Event-ID header they send back.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}
		kinds := parseKinds(r.URL.Query().Get("kinds"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprint(w, "retry: 5000\n\n")
		flusher.Flush()

		lastID, _ := strconv.ParseInt(r.Header.Get("Last-Event-ID"), 10, 64)
		id, backlog, ch := broker.Subscribe(lastID)
		defer broker.Unsubscribe(id)

		write := func(evt Event) {
			if kinds != nil && !kinds[evt.Kind] {
				return
			}
			fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.ID, evt.Kind, evt.Payload)
			flusher.Flush()
		}
		for _, evt := range backlog {
			write(evt)
		}

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case evt, ok := <-ch:
				if !ok {
					return
				}
				write(evt)
			}
		}
	}
}

// parseKinds turns "a, b" into a set; an empty query means no filter.
func parseKinds(q string) map[string]bool {
	if q == "" {
		return nil
	}
	kinds := make(map[string]bool)
	for _, k := range strings.Split(q, ",") {
		if k = strings.TrimSpace(k); k != "" {
			kinds[k] = true
		}
	}
	return kinds
}
