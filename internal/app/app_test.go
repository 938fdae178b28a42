package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/GlebRadaev/stockfolio/internal/config"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}

func (s *ApplicationSuite) TestWait_NoErrors() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.NoError(s.app.Wait(ctx, cancel))
}

func (s *ApplicationSuite) TestStartKeepAlive_SkippedOutsideProduction() {
	s.app.cfg = &config.Config{AppEnv: "development", KeepAliveURL: "https://example.com/api/tracker"}

	s.Require().NoError(s.app.startKeepAlive(context.Background()))
	s.Nil(s.app.keepalive)
}

func (s *ApplicationSuite) TestStartKeepAlive_InvalidSchedule() {
	s.app.cfg = &config.Config{
		AppEnv:            config.ProductionEnv,
		KeepAliveURL:      "https://example.com/api/tracker",
		KeepAliveSchedule: "not a schedule",
	}

	s.Error(s.app.startKeepAlive(context.Background()))
}

func (s *ApplicationSuite) TestCloseResources_Empty() {
	s.NotPanics(s.app.closeResources)
}
