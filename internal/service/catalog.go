package service

import (
	"net/http"

	"oyna-console/internal/model"
)

func form[T any]() func() any {
	return func() any { return new(T) }
}

var (
	actDelete  = Action{Name: "delete", Method: http.MethodDelete}
	actApprove = Action{Name: "approve", Method: http.MethodPost, Verb: "approve"}
	actReject  = Action{Name: "reject", Method: http.MethodPost, Verb: "reject", Form: form[RejectForm]()}
	actBan     = Action{Name: "ban", Method: http.MethodPost, Verb: "ban", Form: form[BanForm]()}
)

func update[T any]() Action {
	return Action{Name: "update", Method: http.MethodPut, Form: form[T]()}
}

func create[T any]() Action {
	return Action{Name: "create", Method: http.MethodPost, Scope: CollectionScope, Form: form[T]()}
}

// DefaultRegistry returns the resources of the Oyna.gg console.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Define[model.User](ResourceConfig{
			Name:        "users",
			Label:       "Kullanıcılar",
			Path:        "/admin/users",
			StatsPath:   "/admin/users/stats",
			DefaultSort: "-users.user_id",
			Columns: []Column{
				{Key: "user_id", Label: "ID", Sortable: true},
				{Key: "username", Label: "Kullanıcı adı", Sortable: true},
				{Key: "email", Label: "E-posta"},
				{Key: "role", Label: "Rol"},
				{Key: "status", Label: "Durum"},
				{Key: "created_at", Label: "Kayıt", Sortable: true},
			},
			Actions: []Action{
				actBan,
				{Name: "unban", Method: http.MethodPost, Verb: "unban"},
				update[UserUpdateForm](),
				actDelete,
			},
		}),
		Define[model.Server](ResourceConfig{
			Name:        "servers",
			Label:       "Sunucular",
			Path:        "/admin/servers",
			StatsPath:   "/admin/servers/stats",
			DefaultSort: "-servers.created_at",
			Columns: []Column{
				{Key: "server_id", Label: "ID", Sortable: true},
				{Key: "name", Label: "Sunucu", Sortable: true},
				{Key: "game", Label: "Oyun"},
				{Key: "status", Label: "Durum"},
				{Key: "votes", Label: "Oy", Sortable: true},
				{Key: "created_at", Label: "Eklenme", Sortable: true},
			},
			Actions: []Action{actApprove, actReject, update[ServerForm](), actDelete},
		}),
		Define[model.Forum](ResourceConfig{
			Name:        "forums",
			Label:       "Forumlar",
			Path:        "/admin/forums",
			StatsPath:   "/admin/forums/stats",
			DefaultSort: "title",
			Columns: []Column{
				{Key: "forum_id", Label: "ID"},
				{Key: "title", Label: "Başlık", Sortable: true},
				{Key: "topic_count", Label: "Konu", Sortable: true},
				{Key: "is_locked", Label: "Kilitli"},
			},
			Actions: []Action{update[ForumForm](), actDelete},
		}),
		Define[model.ForumPost](ResourceConfig{
			Name:        "forum-posts",
			Label:       "Forum gönderileri",
			Path:        "/admin/forum-posts",
			DefaultSort: "-created_at",
			Columns: []Column{
				{Key: "post_id", Label: "ID"},
				{Key: "title", Label: "Başlık"},
				{Key: "author", Label: "Yazar"},
				{Key: "created_at", Label: "Tarih", Sortable: true},
			},
			Actions: []Action{actDelete},
		}),
		Define[model.Tag](ResourceConfig{
			Name:        "tags",
			Label:       "Etiketler",
			Path:        "/admin/tags",
			DefaultSort: "name",
			Columns: []Column{
				{Key: "tag_id", Label: "ID"},
				{Key: "name", Label: "Etiket", Sortable: true},
				{Key: "color", Label: "Renk"},
				{Key: "used_by", Label: "Kullanım", Sortable: true},
			},
			Actions: []Action{create[TagForm](), update[TagForm](), actDelete},
		}),
		Define[model.Advertisement](ResourceConfig{
			Name:        "advertisements",
			Label:       "Reklamlar",
			Path:        "/admin/advertisements",
			StatsPath:   "/admin/advertisements/stats",
			DefaultSort: "-starts_at",
			Columns: []Column{
				{Key: "ad_id", Label: "ID"},
				{Key: "title", Label: "Başlık"},
				{Key: "placement", Label: "Alan"},
				{Key: "is_active", Label: "Aktif"},
				{Key: "impressions", Label: "Gösterim", Sortable: true},
				{Key: "clicks", Label: "Tıklama", Sortable: true},
				{Key: "ends_at", Label: "Bitiş", Sortable: true},
			},
			Actions: []Action{
				create[AdvertisementForm](),
				update[AdvertisementForm](),
				actDelete,
				{Name: "toggle", Method: http.MethodPost, Verb: "toggle"},
			},
		}),
		Define[model.Lottery](ResourceConfig{
			Name:        "lotteries",
			Label:       "Çekilişler",
			Path:        "/admin/lotteries",
			StatsPath:   "/admin/lotteries/stats",
			DefaultSort: "-ends_at",
			Columns: []Column{
				{Key: "lottery_id", Label: "ID"},
				{Key: "title", Label: "Başlık"},
				{Key: "prize", Label: "Ödül"},
				{Key: "status", Label: "Durum"},
				{Key: "participants", Label: "Katılımcı", Sortable: true},
				{Key: "ends_at", Label: "Bitiş", Sortable: true},
			},
			Actions: []Action{
				create[LotteryForm](),
				update[LotteryForm](),
				actDelete,
				{Name: "draw", Method: http.MethodPost, Verb: "draw"},
			},
		}),
		Define[model.Streamer](ResourceConfig{
			Name:        "streamers",
			Label:       "Yayıncılar",
			Path:        "/admin/streamers",
			StatsPath:   "/admin/streamers/stats",
			DefaultSort: "-followers",
			Columns: []Column{
				{Key: "streamer_id", Label: "ID"},
				{Key: "name", Label: "Yayıncı", Sortable: true},
				{Key: "platform", Label: "Platform"},
				{Key: "status", Label: "Durum"},
				{Key: "followers", Label: "Takipçi", Sortable: true},
				{Key: "is_live", Label: "Canlı"},
			},
			Actions: []Action{actApprove, actReject, actBan},
		}),
		Define[model.StreamerPost](ResourceConfig{
			Name:        "streamer-posts",
			Label:       "Yayıncı gönderileri",
			Path:        "/admin/streamer-posts",
			DefaultSort: "-created_at",
			Columns: []Column{
				{Key: "post_id", Label: "ID"},
				{Key: "streamer", Label: "Yayıncı"},
				{Key: "content", Label: "İçerik"},
				{Key: "status", Label: "Durum"},
				{Key: "reports", Label: "Şikayet", Sortable: true},
				{Key: "created_at", Label: "Tarih", Sortable: true},
			},
			Actions: []Action{actApprove, actReject, actDelete},
		}),
		Define[model.Report](ResourceConfig{
			Name:        "reports",
			Label:       "Şikayetler",
			Path:        "/admin/reports",
			StatsPath:   "/admin/reports/stats",
			DefaultSort: "-created_at",
			Columns: []Column{
				{Key: "report_id", Label: "ID"},
				{Key: "target_type", Label: "Tür"},
				{Key: "reason", Label: "Sebep"},
				{Key: "status", Label: "Durum"},
				{Key: "created_at", Label: "Tarih", Sortable: true},
			},
			Actions: []Action{
				{Name: "resolve", Method: http.MethodPost, Verb: "resolve", Form: form[ResolveForm]()},
				{Name: "dismiss", Method: http.MethodPost, Verb: "dismiss", Form: form[ResolveForm]()},
			},
		}),
		Define[model.Ticket](ResourceConfig{
			Name:        "tickets",
			Label:       "Destek talepleri",
			Path:        "/admin/tickets",
			StatsPath:   "/admin/tickets/stats",
			DefaultSort: "-updated_at",
			Columns: []Column{
				{Key: "ticket_id", Label: "ID"},
				{Key: "subject", Label: "Konu"},
				{Key: "category", Label: "Kategori"},
				{Key: "priority", Label: "Öncelik"},
				{Key: "status", Label: "Durum"},
				{Key: "updated_at", Label: "Güncellendi", Sortable: true},
			},
			Actions: []Action{
				{Name: "reply", Method: http.MethodPost, Verb: "reply", Form: form[ReplyForm]()},
				{Name: "close", Method: http.MethodPost, Verb: "close"},
			},
		}),
	)
}
