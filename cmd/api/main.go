// Package main (in api-subfolder) provides launch of the whole application
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Quickstand/PhotoVault/internal/classify"
	"github.com/Quickstand/PhotoVault/internal/kafka"
	"github.com/Quickstand/PhotoVault/internal/mwlogger"
	"github.com/Quickstand/PhotoVault/internal/repository"
	"github.com/Quickstand/PhotoVault/internal/service"
	"github.com/Quickstand/PhotoVault/internal/storage"
	"github.com/Quickstand/PhotoVault/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключиться к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewPhotoStorage(appConfig, 5, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresOpener(dbConn)

	// классификатор: Vision тянет байты через хранилище
	detector, err := classify.NewLabelDetector(ctx, appConfig, strg)
	if err != nil {
		log.Fatalf("Failed to init label-detector: %v", err)
	}

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitReady(broker, 10*time.Second)
	// подключиться к кафке как продюсер событий
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// создаем экземпляр сервиса
	var svc PhotoAPIService = service.NewPhotoService(repo, strg, detector, pub)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewPhotoHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.GET("/users", handlers.ListUsers)                      // все пользователи по возрастанию id
	engine.GET("/images", handlers.ListAssets)                    // список ассетов с опциональным фильтром по владельцу
	engine.POST("/images", handlers.Upload)                       // залить картинку
	engine.DELETE("/images", handlers.DeleteAll)                  // снести все
	engine.GET("/image", handlers.GetImage)                       // метаданные + файл
	engine.GET("/image_labels/:assetid", handlers.ImageLabels)    // лейблы одного ассета
	engine.GET("/images_with_label", handlers.ImagesWithLabel)    // поиск по подстроке лейбла

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия соединений
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Failed to shutdown HTTP-server gracefully:", err)
	}

	shutdown(pub, dbConn, detector)
	log.Println("Exiting app...")
}

type closer interface {
	Close() error
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB, detector closer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing Vision client
	if err := detector.Close(); err != nil {
		log.Println("Failed to close Vision-client:", err)
	}

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
