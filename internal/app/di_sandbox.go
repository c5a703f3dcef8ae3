package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/allisson/phrsdk/internal/database"
	"github.com/allisson/phrsdk/internal/http"
	sandboxHTTP "github.com/allisson/phrsdk/internal/sandbox/http"
	sandboxRepository "github.com/allisson/phrsdk/internal/sandbox/repository"
	sandboxService "github.com/allisson/phrsdk/internal/sandbox/service"
	sandboxUseCase "github.com/allisson/phrsdk/internal/sandbox/usecase"
)

// sandboxComponents are the parts of the sandbox backend.
type sandboxComponents struct {
	userRepository   lazy[sandboxUseCase.UserRepository]
	recordRepository lazy[sandboxUseCase.RecordRepository]
	blobStore        lazy[sandboxUseCase.BlobStore]
	accountUseCase   lazy[sandboxUseCase.AccountUseCase]
	recordUseCase    lazy[sandboxUseCase.RecordUseCase]
	documentUseCase  lazy[sandboxUseCase.DocumentUseCase]
	httpServer       lazy[*http.Server]
	metricsServer    lazy[*http.MetricsServer]
}

// SandboxUserRepository returns the account store of the configured driver.
func (c *Container) SandboxUserRepository() (sandboxUseCase.UserRepository, error) {
	return c.sandbox.userRepository.get(func() (sandboxUseCase.UserRepository, error) {
		if c.config.DBDriver == database.DriverMemory {
			return sandboxRepository.NewMemoryUserRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for user repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			return sandboxRepository.NewMySQLUserRepository(db), nil
		default:
			return sandboxRepository.NewPostgreSQLUserRepository(db), nil
		}
	})
}

// SandboxRecordRepository returns the envelope store of the configured driver.
func (c *Container) SandboxRecordRepository() (sandboxUseCase.RecordRepository, error) {
	return c.sandbox.recordRepository.get(func() (sandboxUseCase.RecordRepository, error) {
		if c.config.DBDriver == database.DriverMemory {
			return sandboxRepository.NewMemoryRecordRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for record repository: %w", err)
		}
		switch c.config.DBDriver {
		case database.DriverMySQL:
			return sandboxRepository.NewMySQLRecordRepository(db), nil
		default:
			return sandboxRepository.NewPostgreSQLRecordRepository(db), nil
		}
	})
}

// SandboxBlobStore returns the document store: memory or an S3 bucket.
func (c *Container) SandboxBlobStore() (sandboxUseCase.BlobStore, error) {
	return c.sandbox.blobStore.get(func() (sandboxUseCase.BlobStore, error) {
		if c.config.BlobStore != "s3" {
			return sandboxRepository.NewMemoryBlobStore(), nil
		}
		client, err := sandboxRepository.NewS3Client(context.Background(), sandboxRepository.S3Config{
			Endpoint:     c.config.S3Endpoint,
			Region:       c.config.S3Region,
			Bucket:       c.config.S3Bucket,
			AccessKey:    c.config.S3AccessKey,
			SecretKey:    c.config.S3SecretKey,
			UsePathStyle: c.config.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		return sandboxRepository.NewS3BlobStore(client, c.config.S3Bucket), nil
	})
}

// SandboxAccountUseCase returns registration, token and key lookups.
func (c *Container) SandboxAccountUseCase() (sandboxUseCase.AccountUseCase, error) {
	return c.sandbox.accountUseCase.get(func() (sandboxUseCase.AccountUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		users, err := c.SandboxUserRepository()
		if err != nil {
			return nil, err
		}
		return sandboxUseCase.NewAccountUseCase(
			txManager,
			users,
			sandboxService.NewSecretService(),
			sandboxService.NewTokenService([]byte(c.config.AuthJWTSecret), c.config.AuthTokenExpiration),
			c.Logger(),
		), nil
	})
}

// SandboxRecordUseCase returns envelope storage and search.
func (c *Container) SandboxRecordUseCase() (sandboxUseCase.RecordUseCase, error) {
	return c.sandbox.recordUseCase.get(func() (sandboxUseCase.RecordUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, err
		}
		records, err := c.SandboxRecordRepository()
		if err != nil {
			return nil, err
		}
		return sandboxUseCase.NewRecordUseCase(txManager, records), nil
	})
}

// SandboxDocumentUseCase returns document storage.
func (c *Container) SandboxDocumentUseCase() (sandboxUseCase.DocumentUseCase, error) {
	return c.sandbox.documentUseCase.get(func() (sandboxUseCase.DocumentUseCase, error) {
		blobs, err := c.SandboxBlobStore()
		if err != nil {
			return nil, err
		}
		return sandboxUseCase.NewDocumentUseCase(blobs, c.config.DocumentMaxSize), nil
	})
}

// SandboxHandlers returns the gin handlers and the authentication middleware.
func (c *Container) SandboxHandlers() (sandboxHTTP.Handlers, gin.HandlerFunc, error) {
	logger := c.Logger()

	accounts, err := c.SandboxAccountUseCase()
	if err != nil {
		return sandboxHTTP.Handlers{}, nil, fmt.Errorf("failed to get account use case: %w", err)
	}
	records, err := c.SandboxRecordUseCase()
	if err != nil {
		return sandboxHTTP.Handlers{}, nil, fmt.Errorf("failed to get record use case: %w", err)
	}
	documents, err := c.SandboxDocumentUseCase()
	if err != nil {
		return sandboxHTTP.Handlers{}, nil, fmt.Errorf("failed to get document use case: %w", err)
	}

	handlers := sandboxHTTP.Handlers{
		Accounts:  sandboxHTTP.NewAccountHandler(accounts, logger),
		Records:   sandboxHTTP.NewRecordHandler(records, logger),
		Documents: sandboxHTTP.NewDocumentHandler(documents, c.config.DocumentMaxSize, logger),
	}
	return handlers, sandboxHTTP.AuthenticationMiddleware(accounts, logger), nil
}

// HTTPServer returns the sandbox server with its router configured. ctx bounds the
// background work of the router (rate limiter eviction).
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return c.sandbox.httpServer.get(func() (*http.Server, error) {
		if err := c.config.ValidateSandbox(); err != nil {
			return nil, fmt.Errorf("invalid sandbox configuration: %w", err)
		}

		handlers, auth, err := c.SandboxHandlers()
		if err != nil {
			return nil, err
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider: %w", err)
		}

		var server *http.Server
		if c.config.DBDriver == database.DriverMemory {
			server = http.NewServer(nil, c.config.ServerHost, c.config.ServerPort, c.Logger())
		} else {
			db, err := c.DB()
			if err != nil {
				return nil, err
			}
			server = http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
		}
		server.SetupRouter(ctx, c.config, handlers, auth, provider)
		c.onShutdown("http server", server.Shutdown)
		return server, nil
	})
}

// MetricsServer returns the Prometheus server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.sandbox.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		server := http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		c.onShutdown("metrics server", server.Shutdown)
		return server, nil
	})
}
