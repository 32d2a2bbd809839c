package message

import (
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"seqchat_server/internal/dao/mysql/repository"
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/dto/respond"
	"seqchat_server/internal/model"
	"seqchat_server/pkg/enum/message_type_enum"
	"seqchat_server/pkg/enum/seq_type_enum"
	"seqchat_server/pkg/errorx"
)

// ==================== 内存桩实现 ====================

// memMessageRepo 内存版消息仓储
type memMessageRepo struct {
	mutex    sync.Mutex
	byUuid       map[int64]*model.Message
	versions     map[int64][]model.MessageVersion
	creates      int
	existsProbes int
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{
		byUuid:   make(map[int64]*model.Message),
		versions: make(map[int64][]model.MessageVersion),
	}
}

func (m *memMessageRepo) Create(message *model.Message, firstVersion *model.MessageVersion) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.creates++
	cp := *message
	m.byUuid[message.Uuid] = &cp
	m.versions[message.Uuid] = append(m.versions[message.Uuid], *firstVersion)
	return nil
}

func (m *memMessageRepo) CreateVersion(version *model.MessageVersion) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	msg, ok := m.byUuid[version.MessageUuid]
	if !ok {
		return errorx.Newf(errorx.CodeNotFound, "消息不存在 magic_message_id=%d", version.MessageUuid)
	}
	m.versions[version.MessageUuid] = append(m.versions[version.MessageUuid], *version)
	msg.CurrentVersionId = version.VersionId
	return nil
}

func (m *memMessageRepo) FindByUuids(uuids []int64, msgType *int8) ([]model.Message, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]model.Message, 0, len(uuids))
	for _, id := range uuids {
		msg, ok := m.byUuid[id]
		if !ok {
			continue
		}
		if msgType != nil && msg.Type != *msgType {
			continue
		}
		cp := *msg
		// 当前版本内容解析，与 SQL 实现行为一致
		for _, v := range m.versions[id] {
			if v.VersionId == msg.CurrentVersionId {
				cp.Content = v.Content
			}
		}
		if cp.DeletedAt.Valid {
			cp.Content = ""
		}
		out = append(out, cp)
	}
	return out, nil
}

func (m *memMessageRepo) FindVersions(messageUuid int64) ([]model.MessageVersion, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]model.MessageVersion(nil), m.versions[messageUuid]...), nil
}

func (m *memMessageRepo) ExistsByAppMessageId(appMessageId string, msgType *int8) (bool, error) {
	m.mutex.Lock()
	m.existsProbes++
	m.mutex.Unlock()
	msg, err := m.FindByAppMessageId(appMessageId)
	return msg != nil, err
}

func (m *memMessageRepo) FindByAppMessageId(appMessageId string) (*model.Message, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, msg := range m.byUuid {
		if msg.AppMessageId == appMessageId {
			cp := *msg
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memMessageRepo) SoftDeleteByUuids(uuids []int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, id := range uuids {
		if msg, ok := m.byUuid[id]; ok {
			msg.DeletedAt = gorm.DeletedAt{Valid: true}
		}
	}
	return nil
}

// stubSeqRepo 只实现编辑/撤回通知需要的查询
type stubSeqRepo struct {
	repository.SeqRepository
	receivers []model.SeqEntry
}

func (s *stubSeqRepo) FindMinSeqByMagicId(magicMessageId int64) ([]model.SeqEntry, error) {
	return s.receivers, nil
}

// stubTopicRepo 话题存在性桩
type stubTopicRepo struct {
	repository.TopicRepository
	topics map[string]*model.Topic
}

func (s *stubTopicRepo) FindByConvAndUuid(conversationId, topicUuid string) (*model.Topic, error) {
	return s.topics[conversationId+"/"+topicUuid], nil
}

// fanoutRecorder 记录扇出调用的 Fanout 桩
type fanoutRecorder struct {
	chatCalls    int
	controlErr   error // 控制条目扇出的注入错误
	controlCalls []struct {
		SeqType        int8
		ReferMessageId int64
		Receivers      []request.MailboxRef
		Extra          string
	}
}

func (f *fanoutRecorder) FanoutChat(msg *model.Message, topicUuid string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error) {
	f.chatCalls++
	out := make([]respond.ReceiverSeqRespond, 0, len(receivers))
	for i, ref := range receivers {
		out = append(out, respond.ReceiverSeqRespond{
			ObjectType: ref.ObjectType,
			ObjectId:   ref.ObjectId,
			SeqId:      int64(i + 1),
		})
	}
	return out, nil
}

func (f *fanoutRecorder) FanoutControl(seqType int8, referMessageId int64, conversationId string, receivers []request.MailboxRef, extra string) ([]respond.ReceiverSeqRespond, error) {
	f.controlCalls = append(f.controlCalls, struct {
		SeqType        int8
		ReferMessageId int64
		Receivers      []request.MailboxRef
		Extra          string
	}{seqType, referMessageId, receivers, extra})
	if f.controlErr != nil {
		return nil, f.controlErr
	}
	return []respond.ReceiverSeqRespond{}, nil
}

func newTestService() (*messageService, *memMessageRepo, *stubSeqRepo, *stubTopicRepo, *fanoutRecorder) {
	msgRepo := newMemMessageRepo()
	seqRepo := &stubSeqRepo{}
	topicRepo := &stubTopicRepo{topics: make(map[string]*model.Topic)}
	fanout := &fanoutRecorder{}
	repos := &repository.Repositories{
		Message: msgRepo,
		Seq:     seqRepo,
		Topic:   topicRepo,
	}
	svc := NewMessageService(repos, fanout, nil)
	return svc, msgRepo, seqRepo, topicRepo, fanout
}

func sendRequest() request.SendMessageRequest {
	return request.SendMessageRequest{
		ConversationId: "c1",
		SenderType:     "user",
		SenderId:       "alice",
		Type:           message_type_enum.Text,
		Content:        "hello",
		ReceiveList: []request.MailboxRef{
			{ObjectType: "user", ObjectId: "bob"},
		},
	}
}

// ==================== 发送 ====================

func TestSendMessageCreatesContentAndFansOut(t *testing.T) {
	svc, msgRepo, _, _, fanout := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if rsp.Duplicate {
		t.Error("fresh send must not be duplicate")
	}
	if rsp.MagicMessageId == 0 {
		t.Error("expected assigned magic_message_id")
	}
	if len(rsp.Receivers) != 1 || rsp.Receivers[0].SeqId != 1 {
		t.Errorf("unexpected receivers %+v", rsp.Receivers)
	}
	if fanout.chatCalls != 1 {
		t.Errorf("expected 1 fanout call, got %d", fanout.chatCalls)
	}

	stored, ok := msgRepo.byUuid[rsp.MagicMessageId]
	if !ok {
		t.Fatal("message not persisted")
	}
	if stored.CurrentVersionId == 0 || len(msgRepo.versions[rsp.MagicMessageId]) != 1 {
		t.Errorf("expected first version created")
	}
}

func TestSendMessageIdempotentOnAppMessageId(t *testing.T) {
	svc, msgRepo, _, _, fanout := newTestService()

	req := sendRequest()
	req.AppMessageId = "client-key-1"

	first, err := svc.SendMessage(req)
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	second, err := svc.SendMessage(req)
	if err != nil {
		t.Fatalf("retry SendMessage error: %v", err)
	}

	if !second.Duplicate {
		t.Error("retry must be flagged duplicate")
	}
	if second.MagicMessageId != first.MagicMessageId {
		t.Errorf("duplicate must echo original id: %d vs %d", second.MagicMessageId, first.MagicMessageId)
	}
	if len(second.Receivers) != 0 {
		t.Errorf("duplicate must not re-fanout, got %+v", second.Receivers)
	}
	if msgRepo.creates != 1 || fanout.chatCalls != 1 {
		t.Errorf("expected single create/fanout, got %d/%d", msgRepo.creates, fanout.chatCalls)
	}
}

func TestSendMessageProbesIdempotencyIndex(t *testing.T) {
	svc, msgRepo, _, _, _ := newTestService()

	req := sendRequest()
	req.AppMessageId = "client-key-2"
	if _, err := svc.SendMessage(req); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if _, err := svc.SendMessage(req); err != nil {
		t.Fatalf("retry SendMessage error: %v", err)
	}

	// 两次发送各探测一次；未携带幂等键的发送不探测
	if msgRepo.existsProbes != 2 {
		t.Errorf("expected 2 idempotency probes, got %d", msgRepo.existsProbes)
	}
	if _, err := svc.SendMessage(sendRequest()); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if msgRepo.existsProbes != 2 {
		t.Errorf("keyless send must not probe, got %d", msgRepo.existsProbes)
	}
}

func TestSendMessageRejectsUnknownType(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	req := sendRequest()
	req.Type = 99
	_, err := svc.SendMessage(req)
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
}

func TestSendMessageRejectsUnknownTopic(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	req := sendRequest()
	req.TopicUuid = "no-such-topic"
	_, err := svc.SendMessage(req)
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestSendMessageWithTopicChecksConversation(t *testing.T) {
	svc, _, _, topicRepo, _ := newTestService()
	topicRepo.topics["c1/topic-1"] = &model.Topic{TopicUuid: "topic-1", ConversationId: "c1", Name: "讨论"}

	req := sendRequest()
	req.TopicUuid = "topic-1"
	if _, err := svc.SendMessage(req); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}

	// 同一话题标识挂在别的会话下不可用
	req.ConversationId = "c2"
	req.AppMessageId = ""
	_, err := svc.SendMessage(req)
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound for cross-conversation topic, got %v", err)
	}
}

// ==================== 编辑 ====================

func TestEditMessageAppendsVersionAndNotifies(t *testing.T) {
	svc, msgRepo, seqRepo, _, fanout := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	seqRepo.receivers = []model.SeqEntry{
		{ObjectType: "user", ObjectId: "bob", SeqId: 1, MagicMessageId: rsp.MagicMessageId},
	}

	edited, err := svc.EditMessage(request.EditMessageRequest{
		MagicMessageId: rsp.MagicMessageId,
		Content:        "hello (edited)",
	})
	if err != nil {
		t.Fatalf("EditMessage error: %v", err)
	}
	if edited.Content != "hello (edited)" {
		t.Errorf("respond content not updated: %s", edited.Content)
	}
	if len(msgRepo.versions[rsp.MagicMessageId]) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(msgRepo.versions[rsp.MagicMessageId]))
	}

	// 后续读取返回新版本
	list, err := svc.GetMessagesByIds(request.GetMessagesRequest{MessageIds: []int64{rsp.MagicMessageId}})
	if err != nil {
		t.Fatalf("GetMessagesByIds error: %v", err)
	}
	if len(list) != 1 || list[0].Content != "hello (edited)" {
		t.Errorf("expected edited content on read, got %+v", list)
	}

	if len(fanout.controlCalls) != 1 {
		t.Fatalf("expected 1 control fanout, got %d", len(fanout.controlCalls))
	}
	call := fanout.controlCalls[0]
	if call.SeqType != seq_type_enum.Edited || call.ReferMessageId != rsp.MagicMessageId {
		t.Errorf("unexpected control call %+v", call)
	}
	if !strings.Contains(call.Extra, "version_id") {
		t.Errorf("edit notification should carry new version id, got %q", call.Extra)
	}
}

func TestEditRevokedMessageRejected(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if err := svc.RevokeMessage(request.RevokeMessageRequest{MagicMessageId: rsp.MagicMessageId}); err != nil {
		t.Fatalf("RevokeMessage error: %v", err)
	}

	_, err = svc.EditMessage(request.EditMessageRequest{
		MagicMessageId: rsp.MagicMessageId,
		Content:        "too late",
	})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
}

func TestEditUnknownMessage(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	_, err := svc.EditMessage(request.EditMessageRequest{MagicMessageId: 404, Content: "x"})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestEditMessageControlFanoutFailurePropagates(t *testing.T) {
	svc, msgRepo, seqRepo, _, fanout := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	seqRepo.receivers = []model.SeqEntry{
		{ObjectType: "user", ObjectId: "bob", SeqId: 1, MagicMessageId: rsp.MagicMessageId},
	}
	fanout.controlErr = errorx.New(errorx.CodeWriteFailed, "写入序列条目失败")

	_, err = svc.EditMessage(request.EditMessageRequest{
		MagicMessageId: rsp.MagicMessageId, Content: "v2",
	})
	if errorx.GetCode(err) != errorx.CodeWriteFailed {
		t.Fatalf("control fanout failure must propagate, got %v", err)
	}

	// 版本已落盘，重试编辑按 last-writer-wins 补上通知
	if len(msgRepo.versions[rsp.MagicMessageId]) != 2 {
		t.Errorf("version append should survive notify failure, got %d versions", len(msgRepo.versions[rsp.MagicMessageId]))
	}
	fanout.controlErr = nil
	if _, err := svc.EditMessage(request.EditMessageRequest{
		MagicMessageId: rsp.MagicMessageId, Content: "v2",
	}); err != nil {
		t.Fatalf("retry EditMessage error: %v", err)
	}
}

// ==================== 撤回 ====================

func TestRevokeMessageTombstonesAndNotifies(t *testing.T) {
	svc, msgRepo, seqRepo, _, fanout := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	seqRepo.receivers = []model.SeqEntry{
		{ObjectType: "user", ObjectId: "bob", SeqId: 1, MagicMessageId: rsp.MagicMessageId},
	}

	if err := svc.RevokeMessage(request.RevokeMessageRequest{MagicMessageId: rsp.MagicMessageId}); err != nil {
		t.Fatalf("RevokeMessage error: %v", err)
	}
	if !msgRepo.byUuid[rsp.MagicMessageId].DeletedAt.Valid {
		t.Error("expected tombstone")
	}
	if len(fanout.controlCalls) != 1 || fanout.controlCalls[0].SeqType != seq_type_enum.Revoked {
		t.Errorf("expected revoke control fanout, got %+v", fanout.controlCalls)
	}

	// 重复撤回幂等，不再扇出
	if err := svc.RevokeMessage(request.RevokeMessageRequest{MagicMessageId: rsp.MagicMessageId}); err != nil {
		t.Fatalf("second RevokeMessage error: %v", err)
	}
	if len(fanout.controlCalls) != 1 {
		t.Errorf("repeat revoke must not fanout again, got %d calls", len(fanout.controlCalls))
	}

	// 墓碑可读，内容为空
	list, err := svc.GetMessagesByIds(request.GetMessagesRequest{MessageIds: []int64{rsp.MagicMessageId}})
	if err != nil {
		t.Fatalf("GetMessagesByIds error: %v", err)
	}
	if len(list) != 1 || !list[0].Revoked || list[0].Content != "" {
		t.Errorf("expected readable tombstone, got %+v", list)
	}
}

func TestRevokeMessageControlFanoutFailurePropagates(t *testing.T) {
	svc, msgRepo, seqRepo, _, fanout := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	seqRepo.receivers = []model.SeqEntry{
		{ObjectType: "user", ObjectId: "bob", SeqId: 1, MagicMessageId: rsp.MagicMessageId},
	}
	fanout.controlErr = errorx.New(errorx.CodeWriteFailed, "写入序列条目失败")

	err = svc.RevokeMessage(request.RevokeMessageRequest{MagicMessageId: rsp.MagicMessageId})
	if errorx.GetCode(err) != errorx.CodeWriteFailed {
		t.Fatalf("control fanout failure must propagate, got %v", err)
	}
	if !msgRepo.byUuid[rsp.MagicMessageId].DeletedAt.Valid {
		t.Error("tombstone should survive notify failure")
	}
}

// ==================== 版本历史 ====================

func TestGetVersionHistoryMarksCurrent(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	rsp, err := svc.SendMessage(sendRequest())
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if _, err := svc.EditMessage(request.EditMessageRequest{
		MagicMessageId: rsp.MagicMessageId, Content: "v2",
	}); err != nil {
		t.Fatalf("EditMessage error: %v", err)
	}

	versions, err := svc.GetVersionHistory(rsp.MagicMessageId)
	if err != nil {
		t.Fatalf("GetVersionHistory error: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(versions))
	}
	if versions[0].Current {
		t.Error("first version must no longer be current")
	}
	if !versions[1].Current || versions[1].Content != "v2" {
		t.Errorf("latest version must be current, got %+v", versions[1])
	}
}
