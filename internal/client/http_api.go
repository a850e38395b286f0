package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/abdelhak4/NashidRoom-sub000/internal/model"
	"github.com/abdelhak4/NashidRoom-sub000/pkg/geo"
)

// HTTPLedger binds LedgerAPI to the voting backend's HTTP surface. Identity
// travels as the X-User-ID header, filled from the identity collaborator on
// every call.
type HTTPLedger struct {
	baseURL  string
	identity IdentityProvider
	http     *fasthttp.Client
	timeout  time.Duration
}

func NewHTTPLedger(baseURL string, identity IdentityProvider) *HTTPLedger {
	return &HTTPLedger{
		baseURL:  baseURL,
		identity: identity,
		http:     &fasthttp.Client{},
		timeout:  10 * time.Second,
	}
}

// apiError is the server's error envelope.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Reason  string `json:"reason,omitempty"`
	} `json:"error"`
}

func (l *HTTPLedger) CastVote(ctx context.Context, eventID, trackID string, direction model.Direction, location *geo.Coordinate) (int, error) {
	body := model.VoteRequest{TrackID: trackID, Direction: direction}
	if location != nil {
		body.Lat = &location.Lat
		body.Lng = &location.Lng
	}

	var resp model.VoteResponse
	url := fmt.Sprintf("%s/api/events/%s/votes", l.baseURL, eventID)
	if err := l.do(ctx, fasthttp.MethodPost, url, body, &resp); err != nil {
		return 0, err
	}
	return resp.NetVotes, nil
}

func (l *HTTPLedger) FetchTracks(ctx context.Context, eventID string) ([]model.Track, error) {
	var resp model.RankingResponse
	url := fmt.Sprintf("%s/api/events/%s/tracks", l.baseURL, eventID)
	if err := l.do(ctx, fasthttp.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tracks, nil
}

func (l *HTTPLedger) FetchUserVotes(ctx context.Context, eventID string) ([]model.UserVote, error) {
	var resp model.RankingResponse
	url := fmt.Sprintf("%s/api/events/%s/tracks", l.baseURL, eventID)
	if err := l.do(ctx, fasthttp.MethodGet, url, nil, &resp); err != nil {
		return nil, err
	}
	return resp.UserVotes, nil
}

func (l *HTTPLedger) FetchEligibility(ctx context.Context, eventID string, location *geo.Coordinate) (model.EligibilityDecision, error) {
	url := fmt.Sprintf("%s/api/events/%s/eligibility", l.baseURL, eventID)
	if location != nil {
		url += "?lat=" + strconv.FormatFloat(location.Lat, 'f', -1, 64) +
			"&lng=" + strconv.FormatFloat(location.Lng, 'f', -1, 64)
	}

	var decision model.EligibilityDecision
	if err := l.do(ctx, fasthttp.MethodGet, url, nil, &decision); err != nil {
		return model.EligibilityDecision{}, err
	}
	return decision, nil
}

func (l *HTTPLedger) do(ctx context.Context, method, url string, body, out interface{}) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	if uid, ok := l.identity.CurrentUserID(); ok {
		req.Header.Set("X-User-ID", uid)
	}

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		req.SetBody(b)
	}

	timeout := l.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}

	if err := l.http.DoTimeout(req, resp, timeout); err != nil {
		return &model.NetworkError{Op: method + " " + url, Err: err}
	}

	if resp.StatusCode() >= 400 {
		return decodeError(resp.StatusCode(), resp.Body())
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &model.NetworkError{Op: "decode response", Err: err}
		}
	}
	return nil
}

// decodeError maps the server's error envelope back onto the client-side
// error taxonomy so callers can errors.Is/As without knowing HTTP.
func decodeError(status int, body []byte) error {
	var envelope apiError
	_ = json.Unmarshal(body, &envelope)

	switch envelope.Error.Code {
	case "UNAUTHENTICATED":
		return model.ErrUnauthenticated
	case "ELIGIBILITY_DENIED":
		return &model.EligibilityDeniedError{Reason: model.EligibilityReason(envelope.Error.Reason)}
	case "LOCATION_UNAVAILABLE":
		return model.ErrLocationUnavailable
	case "NOT_FOUND":
		return model.ErrVoteNotFound
	case "INCONSISTENT_WRITE":
		return &model.InconsistentWriteError{}
	}
	return &model.NetworkError{Op: "ledger call", Err: fmt.Errorf("status %d: %s", status, envelope.Error.Message)}
}
