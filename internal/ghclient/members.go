package ghclient

import (
	"context"
	"fmt"

	"github.com/spiffcs/dormant/internal/log"
	"github.com/spiffcs/dormant/internal/model"
)

// OrgMemberRemover is a RemovalHook that removes the account from the
// organization entirely.
type OrgMemberRemover struct {
	client *Client
	org    string
}

// NewOrgMemberRemover creates a remover for the given organization.
func NewOrgMemberRemover(client *Client, org string) *OrgMemberRemover {
	return &OrgMemberRemover{client: client, org: org}
}

// Remove drops the account's organization membership.
func (r *OrgMemberRemover) Remove(ctx context.Context, a model.Account) (bool, error) {
	member, _, err := r.client.client.Organizations.IsMember(ctx, r.org, a.Login)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of %s: %w", a.Login, err)
	}
	if !member {
		log.Debug("account is not an org member, nothing to remove", "login", a.Login)
		return false, nil
	}

	if _, err := r.client.client.Organizations.RemoveMember(ctx, r.org, a.Login); err != nil {
		return false, fmt.Errorf("failed to remove %s from %s: %w", a.Login, r.org, err)
	}

	log.Info("removed organization member", "login", a.Login, "org", r.org)
	return true, nil
}
