package session

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	domses "github.com/taimoorKVD/car-recommendation-apis/internal/domain/session"
)

func marshalIntent(in intent.Intent) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal intent: %w", err)
	}
	return string(b), nil
}

func sessionToHash(s domses.Session) (map[string]string, error) {
	intentJSON, err := marshalIntent(s.Intent)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"user_id":        strconv.FormatInt(s.UserID, 10),
		"session_id":     s.SessionID,
		"status":         string(s.Status),
		"intent_json":    intentJSON,
		"original_query": s.OriginalQuery,
		"created_at":     strconv.FormatInt(s.CreatedAt, 10),
	}, nil
}

func sessionFromHash(userID int64, sessionID string, m map[string]string) (domses.Session, error) {
	var in intent.Intent
	if raw := m["intent_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			return domses.Session{}, fmt.Errorf("unmarshal intent: %w", err)
		}
	}

	createdAt, _ := strconv.ParseInt(m["created_at"], 10, 64)
	resolvedAt, _ := strconv.ParseInt(m["resolved_at"], 10, 64)

	return domses.Session{
		UserID:        userID,
		SessionID:     sessionID,
		Status:        domses.Status(m["status"]),
		Intent:        in,
		OriginalQuery: m["original_query"],
		CreatedAt:     createdAt,
		ResolvedAt:    resolvedAt,
	}, nil
}
