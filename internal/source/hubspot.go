package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/support-insights/backend/internal/models"
)

// HubSpotClient pulls support tickets through the HubSpot CRM v3 search API.
// Used by the sync job; dashboard reads go through the Firestore mirror.
type HubSpotClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

const hubspotPageLimit = 100

var hubspotTicketProperties = []string{
	"subject",
	"createdate",
	"first_agent_reply_date",
	"hs_pipeline",
	"hs_pipeline_stage",
	"hs_ticket_priority",
	"hubspot_owner_id",
}

type hubspotSearchRequest struct {
	FilterGroups []hubspotFilterGroup `json:"filterGroups"`
	Properties   []string             `json:"properties"`
	Limit        int                  `json:"limit"`
	After        string               `json:"after,omitempty"`
	Sorts        []hubspotSort        `json:"sorts"`
}

type hubspotFilterGroup struct {
	Filters []hubspotFilter `json:"filters"`
}

type hubspotFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type hubspotSort struct {
	PropertyName string `json:"propertyName"`
	Direction    string `json:"direction"`
}

type hubspotSearchResponse struct {
	Total   int `json:"total"`
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
	Paging struct {
		Next struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (h HubSpotClient) httpClient() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// FetchTickets pages through tickets created inside the range. Rows keep
// HubSpot's own property names; the normalizer maps them.
func (h HubSpotClient) FetchTickets(ctx context.Context, dr models.DateRange) ([]Row, error) {
	var rows []Row
	after := ""
	for {
		req := hubspotSearchRequest{
			Properties: hubspotTicketProperties,
			Limit:      hubspotPageLimit,
			After:      after,
			Sorts:      []hubspotSort{{PropertyName: "createdate", Direction: "ASCENDING"}},
		}
		if !dr.IsZero() {
			req.FilterGroups = []hubspotFilterGroup{{Filters: []hubspotFilter{
				{PropertyName: "createdate", Operator: "GTE", Value: strconv.FormatInt(dr.Start.UnixMilli(), 10)},
				{PropertyName: "createdate", Operator: "LTE", Value: strconv.FormatInt(dr.End.UnixMilli(), 10)},
			}}}
		}

		var resp hubspotSearchResponse
		if err := h.post(ctx, "/crm/v3/objects/tickets/search", req, &resp); err != nil {
			return nil, err
		}
		for _, result := range resp.Results {
			row := Row{"id": result.ID}
			for k, v := range result.Properties {
				row[k] = v
			}
			rows = append(rows, row)
		}
		after = resp.Paging.Next.After
		if after == "" {
			break
		}
	}
	return rows, nil
}

// FetchOwners maps HubSpot owner IDs to display names.
func (h HubSpotClient) FetchOwners(ctx context.Context) (map[string]string, error) {
	owners := map[string]string{}
	after := ""
	for {
		url := h.BaseURL + "/crm/v3/owners?limit=100"
		if after != "" {
			url += "&after=" + after
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+h.APIKey)
		resp, err := h.httpClient().Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		var body struct {
			Results []struct {
				ID        string `json:"id"`
				FirstName string `json:"firstName"`
				LastName  string `json:"lastName"`
				Email     string `json:"email"`
			} `json:"results"`
			Paging struct {
				Next struct {
					After string `json:"after"`
				} `json:"next"`
			} `json:"paging"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		for _, o := range body.Results {
			name := o.FirstName
			if o.LastName != "" {
				name += " " + o.LastName
			}
			if name == "" {
				name = o.Email
			}
			if name != "" {
				owners[o.ID] = name
			}
		}
		after = body.Paging.Next.After
		if after == "" {
			return owners, nil
		}
	}
}

// FetchPipelines returns the live pipeline ID -> label mapping, used by the
// sync job to detect drift from the embedded map.
func (h HubSpotClient) FetchPipelines(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+"/crm/v3/pipelines/tickets", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+h.APIKey)
	resp, err := h.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	var body struct {
		Results []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, p := range body.Results {
		out[p.ID] = p.Label
	}
	return out, nil
}

func (h HubSpotClient) post(ctx context.Context, path string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.APIKey)

	resp, err := h.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: hubspot status %s", ErrUnavailable, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
