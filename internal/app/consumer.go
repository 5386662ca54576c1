package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"dayflow-hris/internal/attendance"
	"dayflow-hris/internal/bootstrap"
	"dayflow-hris/internal/config"
	"dayflow-hris/internal/employee"
	"dayflow-hris/internal/events"
	"dayflow-hris/internal/leave"
	"dayflow-hris/internal/messaging/kafka"
	"dayflow-hris/internal/messaging/kafka/consumer"
	"dayflow-hris/internal/payroll"
	"dayflow-hris/internal/payroll/calculator"
	"dayflow-hris/internal/salarystructure"
	"dayflow-hris/internal/shared/connection"
	"dayflow-hris/internal/shared/counter"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reads the employee lifecycle and leave approval topics until
// SIGINT or SIGTERM.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return errors.New("KAFKA_BROKER is required")
	}

	// consumer tidak butuh cache redis, rdb boleh nil
	employeeService := employee.NewService(employee.NewRepository(gormDB), nil)
	formula := calculator.NewFormula(calculator.Config{
		StandardAllowance: cfg.Payroll.StandardAllowance,
		ProfessionalTax:   cfg.Payroll.ProfessionalTax,
	})
	salaryStructureService := salarystructure.NewService(
		sqlDB,
		salarystructure.NewRepository(gormDB),
		employeeService,
		formula,
		nil,
	)
	leaveService := leave.NewService(sqlDB, leave.NewRepository(gormDB), kafka.NewOutboxRepository(sqlDB), cfg.Leave)
	payrollService := payroll.NewService(
		payroll.NewRepository(gormDB),
		salaryStructureService,
		employeeService,
		attendance.NewService(sqlDB, attendance.NewRepository(gormDB)),
		counter.NewRepository(gormDB),
		nil,
	)
	auditLogger := bootstrap.NewStdoutAuditLogger()

	lifecycleReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.EmployeeCreatedTopic,
		GroupID:        cfg.Kafka.GroupID,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer lifecycleReader.Close()

	leaveReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.LeaveApprovedTopic,
		GroupID:        cfg.Kafka.GroupID + "-payslip",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer leaveReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, leaveService, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeLeaveApproved(ctx, leaveReader, payrollService, auditLogger, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
