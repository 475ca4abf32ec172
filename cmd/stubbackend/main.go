// A stub reasoning backend for manual testing: answers the chat and
// ingest wire formats with canned data.
package main

import (
	"encoding/json"
	"log"
	"net/http"
)

func main() {
	http.HandleFunc("/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ConversationID string `json:"conversation_id"`
			Messages       []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		last := ""
		if n := len(req.Messages); n > 0 {
			last = req.Messages[n-1].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer": "Echo: " + last,
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 8,
				"total_tokens":      20,
			},
			"safety": map[string]interface{}{"flagged": false},
		})

		log.Printf("chat: conversation=%s messages=%d", req.ConversationID, len(req.Messages))
	})

	http.HandleFunc("/v1/ingest", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			JobID   string `json:"job_id"`
			DocType string `json:"doc_type"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":         true,
			"message":         "stored",
			"ingest_id":       req.JobID,
			"vector_store_id": "vs_stub",
			"file_id":         "file_stub",
			"summary":         "stub document",
			"tags":            []string{req.DocType},
		})

		log.Printf("ingest: job=%s type=%s", req.JobID, req.DocType)
	})

	log.Println("Stub backend starting on port 9000")
	http.ListenAndServe(":9000", nil)
}
