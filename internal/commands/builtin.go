package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-api-helper/internal/apihelper"
	"github.com/samvad-hq/samvad-api-helper/internal/domain"
)

// Command names exposed to the frontend.
const (
	CommandEcho              = "echo"
	CommandSendRequest       = "send_request"
	CommandRecentExchanges   = "recent_exchanges"
	CommandHeaderSuggestions = "header_suggestions"
)

const defaultRecentLimit = 50

// Sender forwards one request.
type Sender interface {
	Send(ctx context.Context, cfg apihelper.RequestConfig) (*apihelper.ResponseData, error)
}

// History lists recorded exchanges, newest first.
type History interface {
	Recent(limit int) ([]domain.Exchange, error)
}

// Default registers the built-in commands. A nil history makes
// recent_exchanges return an empty list.
func Default(sender Sender, history History) *Registry {
	r := NewRegistry()
	r.Register(CommandEcho, Echo)
	r.Register(CommandSendRequest, SendRequest(sender))
	r.Register(CommandRecentExchanges, RecentExchanges(history))
	r.Register(CommandHeaderSuggestions, HeaderSuggestions)
	return r
}

// Echo returns msg unchanged.
func Echo(_ context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Msg *string `json:"msg"`
	}
	if err := decodeArgs(CommandEcho, args, &in); err != nil {
		return nil, err
	}
	if in.Msg == nil {
		return nil, &argsError{command: CommandEcho, err: errors.New("missing field msg")}
	}
	return *in.Msg, nil
}

// SendRequest forwards {"config": RequestConfig} through s.
func SendRequest(s Sender) Handler {
	return func(ctx context.Context, args json.RawMessage) (any, error) {
		var in struct {
			Config *apihelper.RequestConfig `json:"config"`
		}
		if err := decodeArgs(CommandSendRequest, args, &in); err != nil {
			return nil, err
		}
		if in.Config == nil {
			return nil, &argsError{command: CommandSendRequest, err: errors.New("missing field config")}
		}
		if ts := in.Config.TimeoutSeconds; ts != nil && *ts > apihelper.MaxTimeoutSeconds {
			return nil, &argsError{
				command: CommandSendRequest,
				err:     fmt.Errorf("timeout_seconds %d exceeds %d", *ts, apihelper.MaxTimeoutSeconds),
			}
		}
		return s.Send(ctx, *in.Config)
	}
}

// RecentExchanges returns up to {"limit": n} recorded exchanges.
func RecentExchanges(h History) Handler {
	return func(_ context.Context, args json.RawMessage) (any, error) {
		in := struct {
			Limit int `json:"limit"`
		}{Limit: defaultRecentLimit}
		if err := decodeArgs(CommandRecentExchanges, args, &in); err != nil {
			return nil, err
		}
		if h == nil {
			return []domain.Exchange{}, nil
		}
		out, err := h.Recent(in.Limit)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = []domain.Exchange{}
		}
		return out, nil
	}
}

// HeaderSuggestions lists common request headers for the header editor.
func HeaderSuggestions(context.Context, json.RawMessage) (any, error) {
	return apihelper.HeaderSuggestions(), nil
}
