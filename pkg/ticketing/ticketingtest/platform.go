// Package ticketingtest provides an in-memory chat platform for tests.
package ticketingtest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Jacobbrewer1/broker/pkg/ticketing"
)

// Platform records every call made to it and serves canned data.
type Platform struct {
	mu sync.Mutex

	nextID int

	// Channels are the created channels by ID.
	Channels map[string]ticketing.ChannelRequest

	// Deleted are the deleted channel IDs in order.
	Deleted []string

	// Permissions are the last intent applied per channel and target.
	Permissions map[string]map[string]ticketing.Intent

	// Sent are the plain messages per channel.
	Sent map[string][]string

	// Controls are the control panel messages per channel.
	Controls map[string][]string

	// History is served by RecentMessages per channel.
	History map[string][]ticketing.Message

	// Roles are the roles each user holds.
	Roles map[string][]string

	// PermissionErrs fail SetSendPermission for the given target.
	PermissionErrs map[string]error

	CreateErr error
	DeleteErr error
	FetchErr  error
	SendErr   error
	RolesErr  error
}

// NewPlatform creates an empty platform.
func NewPlatform() *Platform {
	return &Platform{
		Channels:       make(map[string]ticketing.ChannelRequest),
		Permissions:    make(map[string]map[string]ticketing.Intent),
		Sent:           make(map[string][]string),
		Controls:       make(map[string][]string),
		History:        make(map[string][]ticketing.Message),
		Roles:          make(map[string][]string),
		PermissionErrs: make(map[string]error),
	}
}

func (p *Platform) CreateTicketChannel(_ context.Context, req ticketing.ChannelRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateErr != nil {
		return "", p.CreateErr
	}

	p.nextID++
	id := fmt.Sprintf("ticket-channel-%d", p.nextID)
	p.Channels[id] = req
	return id, nil
}

func (p *Platform) DeleteChannel(_ context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.DeleteErr != nil {
		return p.DeleteErr
	}
	delete(p.Channels, channelID)
	p.Deleted = append(p.Deleted, channelID)
	return nil
}

func (p *Platform) SetSendPermission(_ context.Context, channelID string, intent ticketing.Intent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.PermissionErrs[intent.TargetID]; ok {
		return err
	}
	if p.Permissions[channelID] == nil {
		p.Permissions[channelID] = make(map[string]ticketing.Intent)
	}
	p.Permissions[channelID][intent.TargetID] = intent
	return nil
}

func (p *Platform) SendMessage(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SendErr != nil {
		return p.SendErr
	}
	p.Sent[channelID] = append(p.Sent[channelID], content)
	return nil
}

func (p *Platform) SendControls(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Controls[channelID] = append(p.Controls[channelID], content)
	return nil
}

func (p *Platform) RecentMessages(_ context.Context, channelID string, limit int) ([]ticketing.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FetchErr != nil {
		return nil, p.FetchErr
	}
	msgs := p.History[channelID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return slices.Clone(msgs), nil
}

func (p *Platform) HasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.RolesErr != nil {
		return false, p.RolesErr
	}
	return slices.Contains(p.Roles[userID], roleID), nil
}

// SendAllowed reports whether the last intent for target in channel was an allow.
// ok is false when no intent was applied.
func (p *Platform) SendAllowed(channelID, targetID string) (allowed, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	in, ok := p.Permissions[channelID][targetID]
	return in.Allow, ok
}

// Messages returns the plain messages sent to channelID.
func (p *Platform) Messages(channelID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.Sent[channelID])
}
