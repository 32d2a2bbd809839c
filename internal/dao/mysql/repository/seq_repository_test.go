package repository

import (
	"testing"

	"seqchat_server/internal/model"
	"seqchat_server/pkg/enum/seq_type_enum"
)

func TestMergeStatusEntriesLastWriterWins(t *testing.T) {
	originals := []model.SeqEntry{
		{SeqId: 1, SeqType: seq_type_enum.Chat, MagicMessageId: 100},
		{SeqId: 2, SeqType: seq_type_enum.Chat, MagicMessageId: 200},
	}
	controls := []model.SeqEntry{
		{SeqId: 5, SeqType: seq_type_enum.Edited, ReferMessageId: 100},
		{SeqId: 8, SeqType: seq_type_enum.Revoked, ReferMessageId: 100},
	}

	merged := mergeStatusEntries(controls, originals)
	if len(merged) != 2 {
		t.Fatalf("expected one winner per message, got %d", len(merged))
	}

	// 结果按 seq_id 升序：消息 200 只有原始条目，消息 100 以撤回条目胜出
	if merged[0].MagicMessageId != 200 || merged[0].SeqType != seq_type_enum.Chat {
		t.Errorf("unexpected first entry %+v", merged[0])
	}
	if merged[1].ReferMessageId != 100 || merged[1].SeqType != seq_type_enum.Revoked || merged[1].SeqId != 8 {
		t.Errorf("expected revoke to win for message 100, got %+v", merged[1])
	}
}

func TestMergeStatusEntriesControlOlderThanOriginal(t *testing.T) {
	// 控制条目序号更小（先投递到别的信箱再补投原始条目）时原始条目胜出
	originals := []model.SeqEntry{
		{SeqId: 9, SeqType: seq_type_enum.Chat, MagicMessageId: 100},
	}
	controls := []model.SeqEntry{
		{SeqId: 3, SeqType: seq_type_enum.Read, ReferMessageId: 100},
	}

	merged := mergeStatusEntries(controls, originals)
	if len(merged) != 1 || merged[0].SeqId != 9 || merged[0].SeqType != seq_type_enum.Chat {
		t.Fatalf("expected original entry to win, got %+v", merged)
	}
}

func TestMergeStatusEntriesEmpty(t *testing.T) {
	if got := mergeStatusEntries(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty merge, got %d", len(got))
	}
}
