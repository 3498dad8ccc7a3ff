package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/support-insights/backend/internal/models"
)

// LiveChatClient pulls archived conversations from the LiveChat agent API.
type LiveChatClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

const livechatPageLimit = 100

type livechatArchivesRequest struct {
	Filters livechatFilters `json:"filters"`
	Limit   int             `json:"limit"`
	PageID  string          `json:"page_id,omitempty"`
}

type livechatFilters struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

type livechatArchivesResponse struct {
	Chats []struct {
		ID     string `json:"id"`
		Users  []livechatUser
		Threads []struct {
			CreatedAt string   `json:"created_at"`
			Tags      []string `json:"tags"`
			Properties struct {
				Rating struct {
					Score   *int   `json:"score"`
					Comment string `json:"comment"`
				} `json:"rating"`
			} `json:"properties"`
		} `json:"threads"`
		Properties struct {
			Supervising struct {
				AgentIDs string `json:"agent_ids"`
			} `json:"supervising"`
		} `json:"properties"`
	} `json:"chats"`
	NextPageID string `json:"next_page_id"`
}

type livechatUser struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Country string `json:"country,omitempty"`
}

func (l LiveChatClient) httpClient() *http.Client {
	if l.Client != nil {
		return l.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// FetchChats pages through the archive. Rows use the LiveChat CSV-export
// vocabulary so API pulls and report exports normalize identically.
func (l LiveChatClient) FetchChats(ctx context.Context, dr models.DateRange) ([]Row, error) {
	var rows []Row
	pageID := ""
	for {
		reqBody := livechatArchivesRequest{Limit: livechatPageLimit, PageID: pageID}
		if !dr.IsZero() {
			reqBody.Filters.From = dr.Start.UTC().Format(time.RFC3339)
			reqBody.Filters.To = dr.End.UTC().Format(time.RFC3339)
		}

		b, _ := json.Marshal(reqBody)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.BaseURL+"/v3.5/agent/action/list_archives", bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+l.Token)

		resp, err := l.httpClient().Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: livechat status %s", ErrUnavailable, resp.Status)
		}
		var body livechatArchivesResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		for _, chat := range body.Chats {
			row := Row{"chat id": chat.ID}
			agents := make([]string, 0, 2)
			country := ""
			for _, u := range chat.Users {
				switch u.Type {
				case "agent":
					agents = append(agents, u.Name)
				case "customer":
					if u.Country != "" {
						country = u.Country
					}
				}
			}
			for i, name := range agents {
				row[fmt.Sprintf("operator %d nick", i+1)] = name
			}
			row["visitor country code"] = country

			if len(chat.Threads) > 0 {
				first := chat.Threads[0]
				row["chat creation date UTC"] = first.CreatedAt
				for i, tag := range first.Tags {
					row[fmt.Sprintf("tag %d", i+1)] = tag
				}
				if score := first.Properties.Rating.Score; score != nil {
					if *score > 0 {
						row["rate"] = "rated good"
					} else {
						row["rate"] = "rated bad"
					}
				} else {
					row["rate"] = "not rated"
				}
				if len(chat.Threads) > 1 {
					last := chat.Threads[len(chat.Threads)-1]
					row["chat duration in seconds"] = threadSpanSeconds(first.CreatedAt, last.CreatedAt)
				}
			}
			rows = append(rows, row)
		}

		pageID = body.NextPageID
		if pageID == "" {
			return rows, nil
		}
	}
}

func threadSpanSeconds(from, to string) string {
	start, err1 := time.Parse(time.RFC3339, strings.TrimSpace(from))
	end, err2 := time.Parse(time.RFC3339, strings.TrimSpace(to))
	if err1 != nil || err2 != nil || end.Before(start) {
		return ""
	}
	return strconv.FormatInt(int64(end.Sub(start).Seconds()), 10)
}
