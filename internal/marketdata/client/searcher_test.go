package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stockfolio/internal/marketdata"
	"stockfolio/internal/marketdata/client"
)

func TestSearcher_LastRequestWins(t *testing.T) {
	t.Parallel()

	// Arrange: the first query hangs until after a newer one resolved
	ctrl := gomock.NewController(t)
	api := NewMockAPI(ctrl)

	firstEntered := make(chan struct{})
	firstRelease := make(chan struct{})
	api.EXPECT().
		Search(gomock.Any(), "AA").
		DoAndReturn(func(context.Context, string) ([]marketdata.SearchResult, error) {
			close(firstEntered)
			<-firstRelease
			return []marketdata.SearchResult{{Symbol: "AA", Name: "Alcoa", Type: "Common Stock"}}, nil
		}).
		Times(1)
	api.EXPECT().
		Search(gomock.Any(), "AAP").
		Return([]marketdata.SearchResult{{Symbol: "AAPL", Name: "Apple Inc", Type: "Common Stock"}}, nil).
		Times(1)

	s := client.NewSearcher(newClient(t, api, marketdata.NewMode(false)))

	// Act: issue "AA", then supersede it with "AAP" while it is in flight
	type result struct {
		rs  []marketdata.SearchResult
		err error
	}
	staleDone := make(chan result, 1)
	go func() {
		rs, err := s.Search(context.Background(), "AA")
		staleDone <- result{rs, err}
	}()
	<-firstEntered

	fresh, err := s.Search(context.Background(), "AAP")
	require.NoError(t, err)
	require.Equal(t, "AAPL", fresh[0].Symbol)

	close(firstRelease)
	stale := <-staleDone

	// Assert: the superseded call's result is discarded on arrival
	require.ErrorIs(t, stale.err, client.ErrSuperseded)
	require.Nil(t, stale.rs)
}

func TestSearcher_SoleRequestReturnsNormally(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	api := NewMockAPI(ctrl)
	api.EXPECT().
		Search(gomock.Any(), "MS").
		Return([]marketdata.SearchResult{{Symbol: "MSFT", Name: "Microsoft", Type: "Common Stock"}}, nil).
		Times(1)

	s := client.NewSearcher(newClient(t, api, marketdata.NewMode(false)))

	// Act
	rs, err := s.Search(context.Background(), "MS")

	// Assert
	require.NoError(t, err)
	require.Len(t, rs, 1)

	// a later search is a fresh latest request, not superseded
	time.Sleep(time.Millisecond)
	rs2, err := s.Search(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, rs2)
}
