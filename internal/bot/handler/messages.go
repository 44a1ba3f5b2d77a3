package handler

import (
	"fmt"
	"html"
	"strings"

	"github.com/dmitrijs2005/sharebot/internal/bot/models"
	"github.com/dmitrijs2005/sharebot/internal/bot/services"
)

// User-facing texts. Messages are sent with HTML parse mode, so anything the
// user typed goes through html.EscapeString.
const (
	msgStart         = "ربات شخصی شما آماده است. یک فایل برایم بفرستید!"
	msgSendMore      = "فایل دریافت شد. لطفاً بقیه فایل‌ها را هم بفرستید..."
	msgAskCaption    = "تمام شد! لطفاً یک توضیح برای این مجموعه فایل‌ها بنویسید:"
	msgGetUsage      = "لطفاً بعد از دستور /get کد مورد نظر را وارد کنید. مثال: /get ABC123"
	msgNotFound      = "کد یافت نشد."
	msgNoFiles       = "خطا: هیچ فایلی برای این کد پیدا نشد."
	msgSending       = "در حال ارسال فایل‌ها..."
	msgCancelled     = "درخواست شما لغو شد."
	msgConfirmOnly   = "لطفاً فقط 'بله' یا 'خیر' وارد کنید."
	msgError         = "خطایی رخ داد."
	msgEmptyBatch    = "هیچ فایلی در این مجموعه نیست."
	msgArchiveFailed = "ذخیره‌ی فایل‌ها ناموفق بود. لطفاً دوباره تلاش کنید."
	msgHint          = "یک فایل بفرستید یا با /get کد یک مجموعه را دریافت کنید."
	msgUnknown       = "دستور ناشناخته. از /start، /get یا /cancel استفاده کنید."
	msgCancelDone    = "عملیات جاری لغو شد."
)

var kindLabels = map[models.FileKind]string{
	models.KindDocument:  "سند",
	models.KindPhoto:     "عکس",
	models.KindVideo:     "ویدیو",
	models.KindAudio:     "صوت",
	models.KindAnimation: "انیمیشن",
}

func kindLabel(k models.FileKind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

func archivedText(r *services.ArchiveResult) string {
	var b strings.Builder
	b.WriteString("مجموعه با موفقیت ذخیره شد.\n\n")
	fmt.Fprintf(&b, "کد شما: <code>%s</code>\n", html.EscapeString(r.Code))
	fmt.Fprintf(&b, "توضیحات: %s", html.EscapeString(r.Description))
	if r.Skipped > 0 {
		fmt.Fprintf(&b, "\n\n%d فایل ذخیره نشد.", r.Skipped)
	}
	return b.String()
}

func summaryText(s *services.Summary) string {
	typ := "فایل تکی"
	if s.IsMix {
		typ = "Mix"
	}

	parts := make([]string, 0, len(s.Counts))
	for _, k := range s.Kinds() {
		parts = append(parts, fmt.Sprintf("%d %s", s.Counts[k], kindLabel(k)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "کد: <code>%s</code>\n", html.EscapeString(s.Code))
	fmt.Fprintf(&b, "توضیحات: %s\n", html.EscapeString(s.Description))
	fmt.Fprintf(&b, "نوع: %s\n", typ)
	fmt.Fprintf(&b, "محتویات: %s\n\n", strings.Join(parts, "، "))
	b.WriteString("برای دانلود، کلمه 'بله' را ارسال کنید. برای انصراف، 'خیر' را بفرستید.")
	return b.String()
}

func deliveredText(d *services.Delivery) string {
	if d.Failed == 0 {
		return fmt.Sprintf("%d فایل ارسال شد.", d.Sent)
	}
	return fmt.Sprintf("%d فایل ارسال شد، %d فایل ارسال نشد.", d.Sent, d.Failed)
}
