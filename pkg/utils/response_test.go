package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithJSON(w, http.StatusCreated, map[string]int{"id": 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1}`, w.Body.String())
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusNotFound, "User not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := w.Body.String()
	var resp Response
	assert.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "User not found", resp.Message)
	assert.False(t, resp.Success)
	assert.JSONEq(t, `{"error":"User not found"}`, body)
}
