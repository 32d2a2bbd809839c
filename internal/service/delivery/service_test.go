package delivery

import (
	"context"
	"sort"
	"sync"
	"testing"

	"gorm.io/gorm"

	"seqchat_server/internal/dao/mysql/repository"
	"seqchat_server/internal/dto/request"
	"seqchat_server/internal/model"
	"seqchat_server/pkg/enum/seq_status_enum"
	"seqchat_server/pkg/enum/seq_type_enum"
	"seqchat_server/pkg/errorx"
)

// ==================== 内存桩实现 ====================

// stubAllocator 按信箱递增发号的内存分配器
type stubAllocator struct {
	mutex    sync.Mutex
	counters map[string]int64
}

func newStubAllocator() *stubAllocator {
	return &stubAllocator{counters: make(map[string]int64)}
}

func (a *stubAllocator) Malloc(ctx context.Context, objectType, objectId string, need int64) (int64, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if need <= 0 {
		need = 1
	}
	key := objectType + ":" + objectId
	a.counters[key] += need
	return a.counters[key], nil
}

// memSeqRepo 内存版序列日志，保留与 SQL 实现一致的筛选排序语义
type memSeqRepo struct {
	mutex        sync.Mutex
	entries      []model.SeqEntry
	singleWrites int // Insert 调用次数
	batchWrites  int // BatchInsert 调用次数
}

func (m *memSeqRepo) Insert(entry *model.SeqEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.singleWrites++
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memSeqRepo) BatchInsert(entries []*model.SeqEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.batchWrites++
	for _, e := range entries {
		m.entries = append(m.entries, *e)
	}
	return nil
}

func (m *memSeqRepo) mailbox(objectType, objectId string) []model.SeqEntry {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]model.SeqEntry, 0)
	for _, e := range m.entries {
		if e.ObjectType == objectType && e.ObjectId == objectId {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqId < out[j].SeqId })
	return out
}

func (m *memSeqRepo) PullAfter(objectType, objectId string, cursor int64, limit int, desc bool) ([]model.SeqEntry, error) {
	all := m.mailbox(objectType, objectId)
	out := make([]model.SeqEntry, 0, limit)
	if desc {
		for i := len(all) - 1; i >= 0; i-- {
			if cursor > 0 && all[i].SeqId >= cursor {
				continue
			}
			out = append(out, all[i])
			if len(out) >= limit {
				break
			}
		}
		return out, nil
	}
	for _, e := range all {
		if e.SeqId <= cursor {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memSeqRepo) PullByAppMessageId(objectType, objectId, appMessageId string, cursor int64, limit int) ([]model.SeqEntry, error) {
	all := m.mailbox(objectType, objectId)
	out := make([]model.SeqEntry, 0, limit)
	for _, e := range all {
		if e.AppMessageId != appMessageId || e.SeqId <= cursor {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memSeqRepo) PullConversationWindow(objectType, objectId string, conversationIds []string, cursor int64, startMs, endMs int64, desc bool, limit int) ([]model.SeqEntry, error) {
	wanted := make(map[string]struct{}, len(conversationIds))
	for _, id := range conversationIds {
		wanted[id] = struct{}{}
	}
	all := m.mailbox(objectType, objectId)
	filtered := make([]model.SeqEntry, 0)
	for _, e := range all {
		if _, ok := wanted[e.ConversationId]; ok {
			filtered = append(filtered, e)
		}
	}
	m2 := &memSeqRepo{entries: filtered}
	return m2.PullAfter(objectType, objectId, cursor, limit, desc)
}

func (m *memSeqRepo) PullGroupedLatest(objectType, objectId string, conversationIds []string, limitPerConversation int) ([]model.SeqEntry, error) {
	all := m.mailbox(objectType, objectId)
	byConv := make(map[string][]model.SeqEntry)
	for _, e := range all {
		byConv[e.ConversationId] = append(byConv[e.ConversationId], e)
	}
	out := make([]model.SeqEntry, 0)
	for _, conv := range conversationIds {
		list := byConv[conv]
		if len(list) > limitPerConversation {
			list = list[len(list)-limitPerConversation:]
		}
		out = append(out, list...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqId < out[j].SeqId })
	return out, nil
}

func (m *memSeqRepo) FindConversationIds(objectType, objectId string) ([]string, error) {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range m.mailbox(objectType, objectId) {
		if _, ok := seen[e.ConversationId]; ok {
			continue
		}
		seen[e.ConversationId] = struct{}{}
		out = append(out, e.ConversationId)
	}
	return out, nil
}

func (m *memSeqRepo) FindBySeqIds(objectType, objectId string, seqIds []int64) ([]model.SeqEntry, error) {
	wanted := make(map[int64]struct{}, len(seqIds))
	for _, id := range seqIds {
		wanted[id] = struct{}{}
	}
	out := make([]model.SeqEntry, 0)
	for _, e := range m.mailbox(objectType, objectId) {
		if _, ok := wanted[e.SeqId]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memSeqRepo) FindStatusChangeStream(objectType, objectId string, referMessageIds []int64) ([]model.SeqEntry, error) {
	wanted := make(map[int64]struct{}, len(referMessageIds))
	for _, id := range referMessageIds {
		wanted[id] = struct{}{}
	}
	latest := make(map[int64]model.SeqEntry)
	for _, e := range m.mailbox(objectType, objectId) {
		var messageId int64
		if e.SeqType == seq_type_enum.Chat {
			messageId = e.MagicMessageId
		} else {
			messageId = e.ReferMessageId
		}
		if _, ok := wanted[messageId]; !ok {
			continue
		}
		if cur, ok := latest[messageId]; !ok || e.SeqId > cur.SeqId {
			latest[messageId] = e
		}
	}
	out := make([]model.SeqEntry, 0, len(latest))
	for _, e := range latest {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeqId < out[j].SeqId })
	return out, nil
}

func (m *memSeqRepo) FindMinSeqByMagicId(magicMessageId int64) ([]model.SeqEntry, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	first := make(map[string]model.SeqEntry)
	for _, e := range m.entries {
		if e.MagicMessageId != magicMessageId || e.SeqType != seq_type_enum.Chat {
			continue
		}
		key := e.ObjectType + ":" + e.ObjectId
		if cur, ok := first[key]; !ok || e.SeqId < cur.SeqId {
			first[key] = e
		}
	}
	out := make([]model.SeqEntry, 0, len(first))
	for _, e := range first {
		out = append(out, e)
	}
	return out, nil
}

func (m *memSeqRepo) BatchUpdateStatus(objectType, objectId string, seqIds []int64, status int8) (int64, error) {
	wanted := make(map[int64]struct{}, len(seqIds))
	for _, id := range seqIds {
		wanted[id] = struct{}{}
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var affected int64
	for i := range m.entries {
		e := &m.entries[i]
		if e.ObjectType != objectType || e.ObjectId != objectId {
			continue
		}
		if _, ok := wanted[e.SeqId]; ok {
			e.Status = status
			affected++
		}
	}
	return affected, nil
}

func (m *memSeqRepo) UpdateExtra(objectType, objectId string, seqId int64, extra string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i := range m.entries {
		e := &m.entries[i]
		if e.ObjectType == objectType && e.ObjectId == objectId && e.SeqId == seqId {
			e.Extra = extra
			return true, nil
		}
	}
	return false, nil
}

func (m *memSeqRepo) DeleteByIds(objectType, objectId string, seqIds []int64) (int64, error) {
	wanted := make(map[int64]struct{}, len(seqIds))
	for _, id := range seqIds {
		wanted[id] = struct{}{}
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	kept := make([]model.SeqEntry, 0, len(m.entries))
	var removed int64
	for _, e := range m.entries {
		if e.ObjectType == objectType && e.ObjectId == objectId {
			if _, ok := wanted[e.SeqId]; ok {
				removed++
				continue
			}
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// memMessageRepo 内容查询桩，只实现拉取路径需要的方法
type memMessageRepo struct {
	repository.MessageRepository
	byUuid map[int64]model.Message
}

func (m *memMessageRepo) FindByUuids(uuids []int64, msgType *int8) ([]model.Message, error) {
	out := make([]model.Message, 0, len(uuids))
	seen := make(map[int64]struct{})
	for _, id := range uuids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if msg, ok := m.byUuid[id]; ok {
			out = append(out, msg)
		}
	}
	return out, nil
}

// memTopicRepo 话题关联桩，记录 AttachMessage 调用
type memTopicRepo struct {
	repository.TopicRepository
	attached []model.TopicMessage
}

func (m *memTopicRepo) AttachMessage(tm *model.TopicMessage) error {
	m.attached = append(m.attached, *tm)
	return nil
}

func newTestService() (*deliveryService, *memSeqRepo, *memMessageRepo, *memTopicRepo) {
	seqRepo := &memSeqRepo{}
	msgRepo := &memMessageRepo{byUuid: make(map[int64]model.Message)}
	topicRepo := &memTopicRepo{}
	repos := &repository.Repositories{
		Message: msgRepo,
		Seq:     seqRepo,
		Topic:   topicRepo,
	}
	svc := NewDeliveryService(repos, newStubAllocator(), nil)
	return svc, seqRepo, msgRepo, topicRepo
}

func chatMessage(uuid int64, conversationId string) *model.Message {
	return &model.Message{
		Uuid:             uuid,
		ConversationId:   conversationId,
		SenderType:       "user",
		SenderId:         "alice",
		Content:          "hello",
		CurrentVersionId: uuid + 1,
	}
}

// ==================== 扇出 ====================

func TestFanoutChatAssignsMonotonicSeqPerMailbox(t *testing.T) {
	svc, seqRepo, _, _ := newTestService()
	receivers := []request.MailboxRef{
		{ObjectType: "user", ObjectId: "bob"},
		{ObjectType: "group", ObjectId: "g1"},
	}

	for round := int64(1); round <= 3; round++ {
		results, err := svc.FanoutChat(chatMessage(100+round, "c1"), "", receivers, "")
		if err != nil {
			t.Fatalf("FanoutChat error: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 receivers, got %d", len(results))
		}
		for _, r := range results {
			if r.SeqId != round {
				t.Errorf("mailbox %s:%s round %d got seq %d", r.ObjectType, r.ObjectId, round, r.SeqId)
			}
		}
	}

	bobEntries := seqRepo.mailbox("user", "bob")
	if len(bobEntries) != 3 {
		t.Fatalf("expected 3 entries for bob, got %d", len(bobEntries))
	}
	for i, e := range bobEntries {
		if e.SeqId != int64(i+1) {
			t.Errorf("entry %d has seq %d", i, e.SeqId)
		}
		if e.SeqType != seq_type_enum.Chat {
			t.Errorf("entry %d has seq_type %d", i, e.SeqType)
		}
	}
}

func TestFanoutChatDedupesReceivers(t *testing.T) {
	svc, seqRepo, _, _ := newTestService()
	receivers := []request.MailboxRef{
		{ObjectType: "user", ObjectId: "bob"},
		{ObjectType: "user", ObjectId: "bob"},
	}

	results, err := svc.FanoutChat(chatMessage(101, "c1"), "", receivers, "")
	if err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 receiver after dedupe, got %d", len(results))
	}
	if got := len(seqRepo.mailbox("user", "bob")); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
}

func TestFanoutSingleReceiverUsesDirectInsert(t *testing.T) {
	svc, seqRepo, _, _ := newTestService()
	one := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}
	two := []request.MailboxRef{
		{ObjectType: "user", ObjectId: "bob"},
		{ObjectType: "group", ObjectId: "g1"},
	}

	if _, err := svc.FanoutChat(chatMessage(101, "c1"), "", one, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if seqRepo.singleWrites != 1 || seqRepo.batchWrites != 0 {
		t.Errorf("single receiver: expected 1 direct insert, got %d/%d", seqRepo.singleWrites, seqRepo.batchWrites)
	}

	if _, err := svc.FanoutChat(chatMessage(102, "c1"), "", two, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if seqRepo.batchWrites != 1 {
		t.Errorf("multi receiver: expected batch insert, got %d", seqRepo.batchWrites)
	}

	if _, err := svc.FanoutControl(seq_type_enum.Revoked, 101, "c1", one, ""); err != nil {
		t.Fatalf("FanoutControl error: %v", err)
	}
	if seqRepo.singleWrites != 2 {
		t.Errorf("single-receiver control: expected direct insert, got %d", seqRepo.singleWrites)
	}
}

func TestFanoutChatEmptyReceiversRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.FanoutChat(chatMessage(101, "c1"), "", nil, "")
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
}

func TestFanoutChatAttachesTopicRows(t *testing.T) {
	svc, _, _, topicRepo := newTestService()
	receivers := []request.MailboxRef{
		{ObjectType: "user", ObjectId: "bob"},
		{ObjectType: "user", ObjectId: "carol"},
	}

	if _, err := svc.FanoutChat(chatMessage(101, "c1"), "topic-1", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if len(topicRepo.attached) != 2 {
		t.Fatalf("expected 2 topic rows, got %d", len(topicRepo.attached))
	}
	for _, tm := range topicRepo.attached {
		if tm.TopicUuid != "topic-1" || tm.ConversationId != "c1" {
			t.Errorf("unexpected topic row %+v", tm)
		}
	}
}

func TestFanoutControlRejectsChatType(t *testing.T) {
	svc, _, _, _ := newTestService()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}
	_, err := svc.FanoutControl(seq_type_enum.Chat, 101, "c1", receivers, "")
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
}

func TestFanoutControlAppendsEntries(t *testing.T) {
	svc, seqRepo, _, _ := newTestService()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}

	if _, err := svc.FanoutChat(chatMessage(101, "c1"), "", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if _, err := svc.FanoutControl(seq_type_enum.Revoked, 101, "c1", receivers, ""); err != nil {
		t.Fatalf("FanoutControl error: %v", err)
	}

	entries := seqRepo.mailbox("user", "bob")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	ctrl := entries[1]
	if ctrl.SeqType != seq_type_enum.Revoked || ctrl.ReferMessageId != 101 {
		t.Errorf("unexpected control entry %+v", ctrl)
	}
	if ctrl.SeqId <= entries[0].SeqId {
		t.Errorf("control entry seq %d not after chat seq %d", ctrl.SeqId, entries[0].SeqId)
	}
}

// ==================== 游标拉取 ====================

func seed(t *testing.T, svc *deliveryService, msgRepo *memMessageRepo, conversationId string, count int) {
	t.Helper()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}
	for i := 0; i < count; i++ {
		uuid := int64(1000 + len(msgRepo.byUuid))
		msg := chatMessage(uuid, conversationId)
		msgRepo.byUuid[uuid] = *msg
		if _, err := svc.FanoutChat(msg, "", receivers, ""); err != nil {
			t.Fatalf("seed FanoutChat error: %v", err)
		}
	}
}

func TestPullAfterPaginatesWithoutGapOrOverlap(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 25)

	seen := make(map[int64]bool)
	cursor := int64(0)
	pages := 0
	for {
		rsp, err := svc.PullAfter(request.PullRequest{
			ObjectType: "user", ObjectId: "bob", Cursor: cursor, Limit: 10,
		})
		if err != nil {
			t.Fatalf("PullAfter error: %v", err)
		}
		pages++
		for _, v := range rsp.Entries {
			if v.SeqId <= cursor {
				t.Errorf("entry %d not after cursor %d", v.SeqId, cursor)
			}
			if seen[v.SeqId] {
				t.Errorf("entry %d returned twice", v.SeqId)
			}
			seen[v.SeqId] = true
		}
		if !rsp.HasMore {
			break
		}
		cursor = rsp.NextCursor
	}

	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
	if len(seen) != 25 {
		t.Errorf("expected 25 distinct entries, got %d", len(seen))
	}
}

func TestPullAfterClampsLimit(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 30)

	// limit<=0 收敛到默认值
	rsp, err := svc.PullAfter(request.PullRequest{ObjectType: "user", ObjectId: "bob"})
	if err != nil {
		t.Fatalf("PullAfter error: %v", err)
	}
	if len(rsp.Entries) != 20 {
		t.Errorf("expected default page of 20, got %d", len(rsp.Entries))
	}

	// 超出上限收敛到最大值
	rsp, err = svc.PullAfter(request.PullRequest{ObjectType: "user", ObjectId: "bob", Limit: 1000})
	if err != nil {
		t.Fatalf("PullAfter error: %v", err)
	}
	if len(rsp.Entries) != 30 {
		t.Errorf("expected all 30 within max page, got %d", len(rsp.Entries))
	}
}

func TestPullRecentReturnsDescending(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 5)

	rsp, err := svc.PullRecent(request.PullRequest{
		ObjectType: "user", ObjectId: "bob", Limit: 3,
	})
	if err != nil {
		t.Fatalf("PullRecent error: %v", err)
	}
	if len(rsp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(rsp.Entries))
	}
	if rsp.Entries[0].SeqId != 5 || rsp.Entries[2].SeqId != 3 {
		t.Errorf("unexpected order: %d..%d", rsp.Entries[0].SeqId, rsp.Entries[2].SeqId)
	}
	if !rsp.HasMore || rsp.NextCursor != 3 {
		t.Errorf("expected hasMore with cursor 3, got %v/%d", rsp.HasMore, rsp.NextCursor)
	}
}

func TestPullAfterJoinMissKeepsEntry(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}

	// 第一条内容缺失（只有条目），第二条内容在库
	if _, err := svc.FanoutChat(chatMessage(500, "c1"), "", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	msg := chatMessage(501, "c1")
	msgRepo.byUuid[501] = *msg
	if _, err := svc.FanoutChat(msg, "", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}

	rsp, err := svc.PullAfter(request.PullRequest{ObjectType: "user", ObjectId: "bob", Limit: 10})
	if err != nil {
		t.Fatalf("PullAfter error: %v", err)
	}
	if len(rsp.Entries) != 2 {
		t.Fatalf("join miss must not drop entries, got %d", len(rsp.Entries))
	}
	if rsp.Entries[0].Message != nil {
		t.Errorf("missing content should yield null message")
	}
	if rsp.Entries[1].Message == nil || rsp.Entries[1].Message.MagicMessageId != 501 {
		t.Errorf("present content should be joined")
	}
}

func TestPullAfterRevokedMessageIsTombstone(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}

	msg := chatMessage(600, "c1")
	msg.DeletedAt = gorm.DeletedAt{Valid: true}
	msg.Content = ""
	msgRepo.byUuid[600] = *msg
	if _, err := svc.FanoutChat(msg, "", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}

	rsp, err := svc.PullAfter(request.PullRequest{ObjectType: "user", ObjectId: "bob", Limit: 10})
	if err != nil {
		t.Fatalf("PullAfter error: %v", err)
	}
	if len(rsp.Entries) != 1 || rsp.Entries[0].Message == nil {
		t.Fatalf("tombstone must still join, got %+v", rsp.Entries)
	}
	view := rsp.Entries[0].Message
	if !view.Revoked || view.Content != "" {
		t.Errorf("expected revoked tombstone, got %+v", view)
	}
}

func TestPullConversationWindowFilters(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 3)
	seed(t, svc, msgRepo, "c2", 3)

	rsp, err := svc.PullConversationWindow(request.ConversationWindowRequest{
		ObjectType: "user", ObjectId: "bob",
		ConversationIds: []string{"c2"}, Limit: 10,
	})
	if err != nil {
		t.Fatalf("PullConversationWindow error: %v", err)
	}
	if len(rsp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(rsp.Entries))
	}
	for _, v := range rsp.Entries {
		if v.ConversationId != "c2" {
			t.Errorf("entry %d belongs to %s", v.SeqId, v.ConversationId)
		}
	}
}

func TestPullGroupedLatestCoversAllConversationsByDefault(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 3)
	seed(t, svc, msgRepo, "c2", 2)

	rsp, err := svc.PullGroupedLatest(request.GroupedLatestRequest{
		ObjectType: "user", ObjectId: "bob",
	})
	if err != nil {
		t.Fatalf("PullGroupedLatest error: %v", err)
	}
	if len(rsp.Entries) != 2 {
		t.Fatalf("expected 1 entry per conversation, got %d", len(rsp.Entries))
	}
	convs := map[string]int64{}
	for _, v := range rsp.Entries {
		convs[v.ConversationId] = v.SeqId
	}
	if convs["c1"] != 3 || convs["c2"] != 5 {
		t.Errorf("expected latest per conversation, got %v", convs)
	}
}

func TestViewsBySeqIdsPreservesInputOrder(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 5)

	views, err := svc.ViewsBySeqIds("user", "bob", []int64{4, 2, 5})
	if err != nil {
		t.Fatalf("ViewsBySeqIds error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	expect := []int64{4, 2, 5}
	for i, v := range views {
		if v.SeqId != expect[i] {
			t.Errorf("position %d: expected seq %d, got %d", i, expect[i], v.SeqId)
		}
	}
}

// ==================== 状态与记账 ====================

func TestResolveStatusChangesLastWriterWins(t *testing.T) {
	svc, _, msgRepo, _ := newTestService()
	receivers := []request.MailboxRef{{ObjectType: "user", ObjectId: "bob"}}

	msg := chatMessage(700, "c1")
	msgRepo.byUuid[700] = *msg
	if _, err := svc.FanoutChat(msg, "", receivers, ""); err != nil {
		t.Fatalf("FanoutChat error: %v", err)
	}
	if _, err := svc.FanoutControl(seq_type_enum.Edited, 700, "c1", receivers, ""); err != nil {
		t.Fatalf("FanoutControl error: %v", err)
	}
	if _, err := svc.FanoutControl(seq_type_enum.Revoked, 700, "c1", receivers, ""); err != nil {
		t.Fatalf("FanoutControl error: %v", err)
	}

	rsp, err := svc.ResolveStatusChanges(request.StatusChangeRequest{
		ObjectType: "user", ObjectId: "bob", ReferMessageIds: []int64{700},
	})
	if err != nil {
		t.Fatalf("ResolveStatusChanges error: %v", err)
	}
	if len(rsp.Entries) != 1 {
		t.Fatalf("expected single winner, got %d", len(rsp.Entries))
	}
	winner := rsp.Entries[0]
	if winner.SeqType != seq_type_enum.Revoked || winner.SeqId != 3 {
		t.Errorf("expected latest control entry to win, got %+v", winner)
	}
}

func TestBatchUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.BatchUpdateStatus(request.UpdateStatusRequest{
		ObjectType: "user", ObjectId: "bob", SeqIds: []int64{1}, Status: 99,
	})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected CodeInvalidParam, got %v", err)
	}
}

func TestBatchUpdateStatusCountsAffected(t *testing.T) {
	svc, seqRepo, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 3)

	rsp, err := svc.BatchUpdateStatus(request.UpdateStatusRequest{
		ObjectType: "user", ObjectId: "bob",
		SeqIds: []int64{1, 2, 99}, Status: seq_status_enum.Read,
	})
	if err != nil {
		t.Fatalf("BatchUpdateStatus error: %v", err)
	}
	if rsp.Affected != 2 {
		t.Errorf("expected 2 affected, got %d", rsp.Affected)
	}
	entries := seqRepo.mailbox("user", "bob")
	if entries[0].Status != seq_status_enum.Read || entries[2].Status != seq_status_enum.Normal {
		t.Errorf("status not applied selectively: %+v", entries)
	}
}

func TestUpdateExtraMissingEntry(t *testing.T) {
	svc, _, _, _ := newTestService()
	err := svc.UpdateExtra(request.UpdateExtraRequest{
		ObjectType: "user", ObjectId: "bob", SeqId: 42, Extra: `{"pin":true}`,
	})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestDeleteEntries(t *testing.T) {
	svc, seqRepo, msgRepo, _ := newTestService()
	seed(t, svc, msgRepo, "c1", 3)

	rsp, err := svc.DeleteEntries(request.DeleteEntriesRequest{
		ObjectType: "user", ObjectId: "bob", SeqIds: []int64{2},
	})
	if err != nil {
		t.Fatalf("DeleteEntries error: %v", err)
	}
	if rsp.Affected != 1 {
		t.Errorf("expected 1 deleted, got %d", rsp.Affected)
	}
	if got := len(seqRepo.mailbox("user", "bob")); got != 2 {
		t.Errorf("expected 2 remaining, got %d", got)
	}
}
