package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"pollboard-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSubmitVote(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	_, voterToken := createTestUser(t, db, "voter@example.com")
	p := createTestPoll(t, db, creator.ID, "Vote here", []string{"A", "B"})

	w := serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
		gin.H{"option_id": p.Options[0].ID})

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserVote string `json:"user_vote"`
		Tally    []struct {
			ID    string `json:"id"`
			Votes int64  `json:"votes"`
		} `json:"tally"`
		TotalVotes int64 `json:"total_votes"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &body)
	assert.NoError(t, err)
	assert.Equal(t, p.Options[0].ID, body.UserVote)
	assert.Equal(t, int64(1), body.TotalVotes)
	assert.Len(t, body.Tally, 2)
	assert.Equal(t, int64(1), body.Tally[0].Votes)
	assert.Equal(t, int64(0), body.Tally[1].Votes)

	var count int64
	db.Model(&models.Vote{}).Where("poll_id = ?", p.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitVote_Duplicate(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	_, voterToken := createTestUser(t, db, "voter@example.com")
	p := createTestPoll(t, db, creator.ID, "One vote only", []string{"A", "B"})

	w := serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
		gin.H{"option_id": p.Options[0].ID})
	assert.Equal(t, http.StatusOK, w.Code)

	// Second attempt, even for a different option, must be rejected.
	w = serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
		gin.H{"option_id": p.Options[1].ID})

	assert.Equal(t, http.StatusConflict, w.Code)

	var responseBody map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	assert.NoError(t, err)
	assert.Equal(t, "You have already voted in this poll", responseBody["error"])

	var count int64
	db.Model(&models.Vote{}).Where("poll_id = ?", p.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitVote_ConcurrentSameUser(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	voter, voterToken := createTestUser(t, db, "voter@example.com")
	p := createTestPoll(t, db, creator.ID, "Race", []string{"A", "B"})

	const attempts = 5
	var wg sync.WaitGroup
	codes := make([]int, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
				gin.H{"option_id": p.Options[i%2].ID})
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, code := range codes {
		if code == http.StatusOK {
			successes++
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent attempt should win")

	var count int64
	db.Model(&models.Vote{}).Where("poll_id = ? AND user_id = ?", p.ID, voter.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSubmitVote_Expired(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	_, voterToken := createTestUser(t, db, "voter@example.com")
	p := createTestPoll(t, db, creator.ID, "Closed", []string{"A", "B"})

	past := time.Now().Add(-1 * time.Hour)
	assert.NoError(t, db.Model(&models.Poll{}).Where("id = ?", p.ID).
		Update("expiration_date", past).Error)

	w := serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
		gin.H{"option_id": p.Options[0].ID})

	assert.Equal(t, http.StatusForbidden, w.Code)

	var responseBody map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	assert.NoError(t, err)
	assert.Equal(t, "This poll has expired", responseBody["error"])

	var count int64
	db.Model(&models.Vote{}).Where("poll_id = ?", p.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubmitVote_NoSelection(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	_, voterToken := createTestUser(t, db, "voter@example.com")
	p := createTestPoll(t, db, creator.ID, "Pick something", []string{"A", "B"})

	w := serveAuthed(router, "POST", "/api/polls/"+p.ID+"/vote", voterToken,
		gin.H{"option_id": ""})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitVote_ForeignOption(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	creator, _ := createTestUser(t, db, "creator@example.com")
	_, voterToken := createTestUser(t, db, "voter@example.com")
	p1 := createTestPoll(t, db, creator.ID, "Poll one", []string{"A", "B"})
	p2 := createTestPoll(t, db, creator.ID, "Poll two", []string{"X", "Y"})

	// Option from another poll must not be accepted.
	w := serveAuthed(router, "POST", "/api/polls/"+p1.ID+"/vote", voterToken,
		gin.H{"option_id": p2.Options[0].ID})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Vote{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestSubmitVote_PollNotFound(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	_, voterToken := createTestUser(t, db, "voter@example.com")

	w := serveAuthed(router, "POST", "/api/polls/missing/vote", voterToken,
		gin.H{"option_id": "whatever"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}
