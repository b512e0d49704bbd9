package app

import (
	"Galeguia/internal/app/server"
	"Galeguia/internal/config"
	"Galeguia/internal/delivery/http"
	"Galeguia/internal/service"
	"Galeguia/internal/service/admin"
	"Galeguia/internal/service/auth"
	"Galeguia/internal/service/course"
	"Galeguia/internal/service/curriculum"
	"Galeguia/internal/service/enrollment"
	"Galeguia/internal/storage/elastic"
	"Galeguia/internal/storage/minio_storage"
	"Galeguia/internal/storage/postgres"
	"Galeguia/pkg/logger"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func Run(cfg *config.Config) {

	log := logger.New(cfg.Env)
	log.Info("Starting with Env: " + cfg.Env)

	pg, err := postgres.NewPostgresPool(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.DBName)
	if err != nil {
		log.FatalErr("error connecting to database", err)
	}
	defer pg.Close()

	profileRepo := postgres.NewProfilePostgres(pg.Pool)
	tokenRepo := postgres.NewTokensPostgres(pg.Pool)
	courseRepo := postgres.NewCoursePostgres(pg.Pool)
	moduleRepo := postgres.NewModulePostgres(pg.Pool)
	lessonRepo := postgres.NewLessonPostgres(pg.Pool)
	enrollmentRepo := postgres.NewEnrollmentPostgres(pg.Pool)
	progressRepo := postgres.NewProgressPostgres(pg.Pool)

	minioStorage, err := minio_storage.NewMinioStorage(cfg.Minio.Endpoint, cfg.Minio.AccessKey,
		cfg.Minio.SecretKey, cfg.Minio.UseSSL, cfg.Minio.Bucket, cfg.Minio.PublicBaseURL)
	if err != nil {
		log.FatalErr("error connecting to minio", err)
	}
	coverStorage := minio_storage.NewCoverStorage(minioStorage)
	mediaStorage := minio_storage.NewLessonMediaStorage(minioStorage)

	esClient, err := elastic.NewElasticClient(cfg.ES.Password, cfg.ES.Hosts)
	if err != nil {
		log.FatalErr("error connecting to elasticsearch", err)
	}
	searchRepo := elastic.NewCourseSearchRepository(esClient, cfg.ES.Index)
	if err := searchRepo.CreateIndexIfNotExist(context.Background()); err != nil {
		log.FatalErr("error creating search index", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, "//", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL, cfg.JWT.ResetTTL)
	authService := auth.NewAuthService(log, jwtManager, profileRepo, tokenRepo)
	courseService := course.NewCourseService(log, courseRepo, moduleRepo, lessonRepo,
		profileRepo, searchRepo, coverStorage, mediaStorage)
	curriculumService := curriculum.NewCurriculumService(log, courseRepo, moduleRepo, lessonRepo,
		profileRepo, mediaStorage)
	enrollmentService := enrollment.NewEnrollmentService(log, courseRepo, enrollmentRepo,
		progressRepo, lessonRepo, moduleRepo)
	adminService := admin.NewAdminService(log, profileRepo, courseRepo, enrollmentRepo, searchRepo)

	u := service.Collection{
		AuthService:       authService,
		CourseService:     courseService,
		CurriculumService: curriculumService,
		EnrollmentService: enrollmentService,
		AdminService:      adminService,
	}

	r := http.InitRoutes(log, u)

	srv := server.New(cfg.HTTPServer.Address, cfg.HTTPServer.Timeout, cfg.HTTPServer.IdleTimeout, r)
	srv.Start()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		log.Info("app signal: " + s.String())
	case err := <-srv.Notify():
		log.ErrorErr("server error", err)
	}
	err = srv.Shutdown()
	if err != nil {
		log.ErrorErr("shutdown error", err)
	}
}
