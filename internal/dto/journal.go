package dto

// MessageRequest posts a chat message.
type MessageRequest struct {
	Author  string `form:"nom" json:"nom" validate:"required"`
	Message string `form:"message" json:"message" validate:"required"`
}

// ContactRequest is the public contact form. The handle may arrive under
// any of the three names used by past versions of the form.
type ContactRequest struct {
	NomDiscord         string `form:"nomDiscord" json:"nomDiscord"`
	Discord            string `form:"discord" json:"discord"`
	NomDiscordQuestion string `form:"nomDiscordQuestion" json:"nomDiscordQuestion"`
	Email              string `form:"email" json:"email"`
	Message            string `form:"message" json:"message" validate:"required,max=5000"`
}

// Handle returns the first non-blank handle field.
func (r ContactRequest) Handle() string {
	for _, v := range []string{r.NomDiscord, r.Discord, r.NomDiscordQuestion} {
		if v != "" {
			return v
		}
	}
	return ""
}
