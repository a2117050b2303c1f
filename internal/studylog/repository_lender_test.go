package studylog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	mock_studylog "github.com/at-ishikawa/studyflow/internal/mocks/studylog"
	"github.com/at-ishikawa/studyflow/internal/studylog"
)

func TestDBRepository_Create_LenderFailure(t *testing.T) {
	acquireErr := errors.New("acquire connection: context deadline exceeded")

	tests := []struct {
		name    string
		setup   func(lender *mock_studylog.MockConnLender)
		wantErr error
	}{
		{
			name: "connection not acquired",
			setup: func(lender *mock_studylog.MockConnLender) {
				lender.EXPECT().WithConn(gomock.Any(), gomock.Any()).Return(acquireErr)
			},
			wantErr: acquireErr,
		},
		{
			name: "context already canceled",
			setup: func(lender *mock_studylog.MockConnLender) {
				lender.EXPECT().WithConn(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, _ func(context.Context, *sqlx.Conn) error) error {
						return ctx.Err()
					})
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lender := mock_studylog.NewMockConnLender(ctrl)
			tt.setup(lender)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			log := &studylog.StudyLog{Mode: "pomodoro", Subject: "Math"}
			err := studylog.NewDBRepository(lender).Create(ctx, log)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, log.ID)
		})
	}
}
