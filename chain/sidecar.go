package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SidecarClient reads blocks from a Substrate API sidecar compatible service.
type SidecarClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewSidecarClient creates a client for the sidecar at baseURL.
func NewSidecarClient(baseURL string) *SidecarClient {
	return &SidecarClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type sidecarHeader struct {
	Number string `json:"number"`
	Hash   string `json:"hash"`
}

type sidecarBlock struct {
	sidecarHeader
	Extrinsics []sidecarExtrinsic `json:"extrinsics"`
}

type sidecarExtrinsic struct {
	Method struct {
		Pallet string `json:"pallet"`
		Method string `json:"method"`
	} `json:"method"`
	Signature *struct {
		Signer struct {
			ID string `json:"id"`
		} `json:"signer"`
	} `json:"signature"`
	Args    Args   `json:"args"`
	Tip     string `json:"tip"`
	Success bool   `json:"success"`
	Info    struct {
		PartialFee string `json:"partialFee"`
	} `json:"info"`
	Events []sidecarEvent `json:"events"`
}

type sidecarEvent struct {
	Method struct {
		Pallet string `json:"pallet"`
		Method string `json:"method"`
	} `json:"method"`
	Data []json.RawMessage `json:"data"`
}

type sidecarDispatchError struct {
	Module *struct {
		Index string `json:"index"`
		Error string `json:"error"`
	} `json:"module"`
}

// Head returns the number of the latest finalized block.
func (c *SidecarClient) Head(ctx context.Context) (int64, error) {
	var h sidecarHeader
	if err := c.get(ctx, "/blocks/head", &h); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(h.Number, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid head number %q: %w", h.Number, err)
	}
	return n, nil
}

// Block returns the block with the given number.
func (c *SidecarClient) Block(ctx context.Context, number int64) (*Block, error) {
	var b sidecarBlock
	if err := c.get(ctx, "/blocks/"+strconv.FormatInt(number, 10), &b); err != nil {
		return nil, err
	}
	block := &Block{Number: number, Hash: b.Hash}
	for i, se := range b.Extrinsics {
		e := Extrinsic{
			Index:  i,
			Pallet: se.Method.Pallet,
			Method: se.Method.Method,
			Args:   se.Args,
			Tip:    se.Tip,
			Fee:    se.Info.PartialFee,
		}
		if se.Signature != nil {
			e.Signer = se.Signature.Signer.ID
		}
		for _, ev := range se.Events {
			event := Event{Pallet: ev.Method.Pallet, Method: ev.Method.Method}
			for _, d := range ev.Data {
				event.Data = append(event.Data, Value(d))
			}
			e.Events = append(e.Events, event)
		}
		if !se.Success {
			e.Error = failure(se)
		}
		if e.Pallet == "timestamp" && e.Method == "set" {
			ms, err := e.Args.Decimal("now")
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", number, err)
			}
			millis, err := strconv.ParseInt(ms, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("block %d: invalid timestamp %q: %w", number, ms, err)
			}
			block.Timestamp = time.UnixMilli(millis).UTC()
		}
		block.Extrinsics = append(block.Extrinsics, e)
	}
	if block.Timestamp.IsZero() {
		return nil, fmt.Errorf("block %d: no timestamp.set extrinsic", number)
	}
	return block, nil
}

func failure(se sidecarExtrinsic) *ExtrinsicError {
	failed := &ExtrinsicError{Module: se.Method.Pallet, Name: "ExtrinsicFailed"}
	for _, ev := range se.Events {
		if ev.Method.Pallet != "system" || ev.Method.Method != "ExtrinsicFailed" || len(ev.Data) == 0 {
			continue
		}
		var de sidecarDispatchError
		if err := json.Unmarshal(ev.Data[0], &de); err == nil && de.Module != nil {
			failed.Module = "module#" + de.Module.Index
			failed.Name = de.Module.Error
		}
	}
	return failed
}

func (c *SidecarClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sidecar error (%d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
