package services

import (
	"context"
	"testing"

	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/pkg/qr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedeemEmptyPayload(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	_, err := f.tokens.Redeem(ctx, qr.Payload{}, f.officerID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRedeemUnknownSubmission(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	_, err := f.tokens.Redeem(ctx, qr.Payload{SubmissionID: "no-such-id"}, f.officerID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestRedeemRejectsUnverifiedSubmission(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	sub, err := f.svc.Submit(ctx, f.driverID, submitInput())
	require.NoError(t, err)

	_, err = f.tokens.Redeem(ctx, qr.Payload{SubmissionID: sub.PublicID}, f.officerID)
	assert.ErrorIs(t, err, ErrNotVerified)

	// A refused redemption leaves no officer_view entry
	assert.Empty(t, f.auditRepo.entries)

	// Final rejection refuses the same way
	subID := f.submitAssigned(t, ctx)
	rejected, err := f.svc.Finalize(ctx, subID, domain.FinalRejected, "bad documents", f.adminID)
	require.NoError(t, err)

	_, err = f.tokens.Redeem(ctx, qr.Payload{SubmissionID: rejected.PublicID}, f.officerID)
	assert.ErrorIs(t, err, ErrNotVerified)
	assert.Empty(t, f.auditRepo.entries)
}

func TestRedeemVerifiedSubmission(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	subID := f.submitAssigned(t, ctx)

	_, err := f.svc.StationDecide(ctx, subID, f.stationID, true, "")
	require.NoError(t, err)
	verified, err := f.svc.Finalize(ctx, subID, domain.FinalVerified, "", f.adminID)
	require.NoError(t, err)

	// The QR image embeds exactly the payload Redeem accepts
	payload, err := qr.Decode(`{"submission_id":"` + verified.PublicID + `"}`)
	require.NoError(t, err)

	result, err := f.tokens.Redeem(ctx, payload, f.officerID)
	require.NoError(t, err)
	assert.Equal(t, domain.FinalVerified, result.Status)
	assert.Equal(t, "Ravi", result.Data.FirstName)
	assert.Equal(t, "KA01AB1234", result.Data.VehicleNum)

	// Exactly one officer_view entry per scan
	entries, err := f.auditRepo.ListBySubmission(ctx, subID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionOfficerView, entries[0].Action)
	assert.Equal(t, f.officerID, entries[0].ActorID)

	_, err = f.tokens.Redeem(ctx, payload, f.officerID)
	require.NoError(t, err)
	entries, err = f.auditRepo.ListBySubmission(ctx, subID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
