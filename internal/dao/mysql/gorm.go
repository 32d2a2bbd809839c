// Package dao 提供数据访问层的初始化和全局数据库实例管理
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package dao

import (
	"fmt"

	"seqchat_server/internal/config"
	"seqchat_server/internal/dao/mysql/repository"
	"seqchat_server/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// GormDB 全局 GORM 数据库实例
// 供 Repository 层和直接数据库操作使用
var GormDB *gorm.DB

// Repos 全局 Repository 实例集合
// 聚合所有 Repository，供 Service 层通过依赖注入使用
var Repos *repository.Repositories

// Init 初始化数据库连接和 Repository 层
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息
//  2. 构建 DSN（Data Source Name）连接字符串
//  3. 使用 GORM 建立数据库连接
//  4. 执行 AutoMigrate 自动迁移表结构
//  5. 初始化全局 Repository 实例
func Init() {
	conf := config.GetConfig()

	// 构建 MySQL DSN 连接字符串
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		// 把重复键错误翻译成 gorm.ErrDuplicatedKey，水位初始化竞争依赖它
		TranslateError: true,
	})
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// AutoMigrate 自动迁移表结构
	// 如果表不存在则创建，如果字段变更则更新结构
	// 注意：不会删除已有字段或数据
	err = GormDB.AutoMigrate(
		&model.Message{},        // 消息内容表
		&model.MessageVersion{}, // 消息版本表
		&model.SeqEntry{},       // 序列日志表
		&model.Topic{},          // 话题表
		&model.TopicMessage{},   // 话题关联表
		&model.MailboxSeq{},     // 信箱序号水位表
	)
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// 初始化全局 Repository 实例集合
	Repos = repository.NewRepositories(GormDB)
}
