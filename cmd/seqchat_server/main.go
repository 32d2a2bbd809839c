package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"seqchat_server/internal/config"
	dao "seqchat_server/internal/dao/mysql"
	myredis "seqchat_server/internal/dao/redis"
	"seqchat_server/internal/gateway/websocket"
	"seqchat_server/internal/handler"
	"seqchat_server/internal/https_server"
	"seqchat_server/internal/infrastructure/logger"
	mq "seqchat_server/internal/infrastructure/mq"
	"seqchat_server/internal/seqalloc"
	"seqchat_server/internal/service"
	"seqchat_server/pkg/util/jwt"
	"seqchat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}
	zap.L().Info("翻译器初始化成功")

	// 4. 初始化数据库
	dao.Init()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化雪花算法节点
	snowflake.Init()
	zap.L().Info("雪花算法初始化成功")

	// 8. 初始化序号分配器（Redis 段内发号 + MySQL 水位续段）
	allocator := seqalloc.New(myredis.GetClient(), dao.Repos.MailboxSeq)
	if conf.PullConfig.AllocBlockSize > 0 {
		block := conf.PullConfig.AllocBlockSize
		allocator.BlockSizeFn = func(objectType, objectId string, want int64) int64 {
			if want > block {
				return want * 2
			}
			return block
		}
	}
	zap.L().Info("序号分配器初始化成功")

	// 9. 初始化 Service 层 (依赖注入)
	service.InitServices(dao.Repos, allocator, myredis.GetCacheService())
	zap.L().Info("Service 层初始化成功")

	// 10. 初始化扇出提醒管道与推送网关
	// 提醒不携带内容，拉取路径才是权威；提醒丢失只影响时延
	mq.SetEventHandler(websocket.GatewayServer)
	if conf.KafkaConfig.MessageMode == "kafka" {
		mq.KafkaService.KafkaInit()
		mq.KafkaService.CreateTopic()
		mq.SetProducer(mq.KafkaService)
		go mq.KafkaService.StartConsume()
	} else {
		mq.SetProducer(mq.ChannelBroker)
		go mq.ChannelBroker.StartConsume()
	}
	zap.L().Info("推送网关初始化成功")

	// 11. 初始化 HTTPS 服务器
	engine := https_server.Init()
	zap.L().Info("HTTPS 服务器初始化成功")

	// 12. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// 等待信号
	<-quit

	zap.L().Info("关闭服务器...")

	if conf.KafkaConfig.MessageMode == "kafka" {
		mq.KafkaService.KafkaClose()
	} else {
		_ = mq.ChannelBroker.Close()
	}

	zap.L().Info("服务器已关闭")
}
