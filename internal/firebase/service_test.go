package firebase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"krishipredict_backend/internal/config"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.BatchResponse), args.Error(1)
}

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("token-%d", i)
	}
	return out
}

func TestNewPushService_DisabledWithoutKey(t *testing.T) {
	svc, err := NewPushService(&config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, svc)
}

func TestPush_BatchesTokens(t *testing.T) {
	m := new(MockMessenger)
	m.On("SendEachForMulticast", mock.Anything, mock.MatchedBy(func(msg *messaging.MulticastMessage) bool {
		return len(msg.Tokens) == MaxTokensPerBatch && msg.Notification.Title == "Notice"
	})).Return(&messaging.BatchResponse{SuccessCount: MaxTokensPerBatch}, nil).Once()
	m.On("SendEachForMulticast", mock.Anything, mock.MatchedBy(func(msg *messaging.MulticastMessage) bool {
		return len(msg.Tokens) == 20
	})).Return(&messaging.BatchResponse{SuccessCount: 18, FailureCount: 2}, nil).Once()

	delivered, err := NewPushServiceWithClient(m, zap.NewNop()).Push(context.Background(), tokens(MaxTokensPerBatch+20), "Notice", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, MaxTokensPerBatch+18, delivered)
	m.AssertExpectations(t)
}

func TestPush_AllBatchesFail(t *testing.T) {
	m := new(MockMessenger)
	m.On("SendEachForMulticast", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	_, err := NewPushServiceWithClient(m, zap.NewNop()).Push(context.Background(), tokens(3), "Notice", "body", nil)
	assert.Error(t, err)
}

func TestPush_NoTokens(t *testing.T) {
	m := new(MockMessenger)
	delivered, err := NewPushServiceWithClient(m, zap.NewNop()).Push(context.Background(), nil, "Notice", "body", nil)
	require.NoError(t, err)
	assert.Zero(t, delivered)
	m.AssertNotCalled(t, "SendEachForMulticast", mock.Anything, mock.Anything)
}
