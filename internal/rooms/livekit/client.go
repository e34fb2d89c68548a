package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"aihr-backend/internal/rooms"
	"aihr-backend/internal/shared/metrics"
	"aihr-backend/internal/shared/upstream"
)

const (
	providerName     = "livekit"
	participantTTL   = 6 * time.Hour
	adminTokenTTL    = 10 * time.Minute
	roomEmptyTimeout = 600
)

// VideoGrant is the LiveKit permission block carried in access tokens.
type VideoGrant struct {
	RoomCreate   bool   `json:"roomCreate,omitempty"`
	RoomJoin     bool   `json:"roomJoin,omitempty"`
	Room         string `json:"room,omitempty"`
	CanPublish   *bool  `json:"canPublish,omitempty"`
	CanSubscribe *bool  `json:"canSubscribe,omitempty"`
}

// Claims is a LiveKit access token.
type Claims struct {
	Name  string      `json:"name,omitempty"`
	Video *VideoGrant `json:"video,omitempty"`
	jwt.RegisteredClaims
}

// Client talks to the LiveKit RoomService over Twirp JSON.
type Client struct {
	url        string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	now        func() time.Time
}

// New constructs a client. Missing credentials are reported on first use.
func New(serverURL, apiKey, apiSecret string) *Client {
	return &Client{
		url:        strings.TrimRight(strings.TrimSpace(serverURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		apiSecret:  strings.TrimSpace(apiSecret),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// URL is the websocket URL participants connect to.
func (c *Client) URL() string { return c.url }

func (c *Client) checkConfig(needURL bool) error {
	var missing []string
	if needURL && c.url == "" {
		missing = append(missing, "LIVEKIT_URL")
	}
	if c.apiKey == "" {
		missing = append(missing, "LIVEKIT_API_KEY")
	}
	if c.apiSecret == "" {
		missing = append(missing, "LIVEKIT_API_SECRET")
	}
	if len(missing) > 0 {
		return upstream.NotConfigured(providerName, missing...)
	}
	return nil
}

// ParticipantToken signs a join token for identity in room.
func (c *Client) ParticipantToken(room, identity string) (string, error) {
	if err := c.checkConfig(false); err != nil {
		return "", err
	}
	yes := true
	return c.sign(Claims{
		Name: identity,
		Video: &VideoGrant{
			RoomJoin:     true,
			Room:         room,
			CanPublish:   &yes,
			CanSubscribe: &yes,
		},
	}, identity, participantTTL)
}

// CreateRoom creates (or returns the existing) room named name.
func (c *Client) CreateRoom(ctx context.Context, name string) (room rooms.Room, err error) {
	if err := c.checkConfig(true); err != nil {
		return rooms.Room{}, err
	}
	start := time.Now()
	defer func() { metrics.ObserveUpstream(providerName, "create_room", start, err) }()

	token, err := c.sign(Claims{Video: &VideoGrant{RoomCreate: true}}, "", adminTokenTTL)
	if err != nil {
		return rooms.Room{}, err
	}
	payload, err := json.Marshal(map[string]any{"name": name, "empty_timeout": roomEmptyTimeout})
	if err != nil {
		return rooms.Room{}, err
	}
	endpoint := httpBase(c.url) + "/twirp/livekit.RoomService/CreateRoom"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return rooms.Room{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rooms.Room{}, upstream.Wrap(providerName, "create_room", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rooms.Room{}, upstream.Wrap(providerName, "create_room", err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "msg").String()
		if msg == "" {
			msg = upstream.Truncate(body, 300)
		}
		return rooms.Room{}, &upstream.Error{Provider: providerName, Op: "create_room", StatusCode: resp.StatusCode, Message: msg}
	}
	parsed := gjson.ParseBytes(body)
	room = rooms.Room{SID: parsed.Get("sid").String(), Name: parsed.Get("name").String()}
	if room.Name == "" {
		room.Name = name
	}
	return room, nil
}

func (c *Client) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := c.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.apiKey,
		Subject:   subject,
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.apiSecret))
}

// httpBase maps the ws(s) URL participants use to the http(s) API host.
func httpBase(u string) string {
	switch {
	case strings.HasPrefix(u, "wss://"):
		return "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		return "http://" + strings.TrimPrefix(u, "ws://")
	default:
		return u
	}
}

var _ rooms.Provider = (*Client)(nil)
