package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/tutorpilot/tutorpilot/internal/config"
	"github.com/tutorpilot/tutorpilot/internal/logger"
	"github.com/tutorpilot/tutorpilot/internal/types"
)

// Stores bundles the in-memory repositories used by service tests.
type Stores struct {
	LessonRepo  *InMemoryLessonStore
	PaymentRepo *InMemoryPaymentStore
	StudentRepo *InMemoryStudentStore
}

// BaseServiceTestSuite provides common setup for service layer tests: fresh
// in-memory stores, a no-op logger, and a context with a test user.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	logger *logger.Logger
	cfg    *config.Configuration
}

func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetUserID(context.Background(), "user_test")
	s.logger = logger.GetLogger()
	s.cfg = &config.Configuration{}
	s.stores = Stores{
		LessonRepo:  NewInMemoryLessonStore(),
		PaymentRepo: NewInMemoryPaymentStore(),
		StudentRepo: NewInMemoryStudentStore(),
	}
}

func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.LessonRepo.Clear()
	s.stores.PaymentRepo.Clear()
	s.stores.StudentRepo.Clear()
}
