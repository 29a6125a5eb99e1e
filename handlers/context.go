package handlers

// contextKey, context'te değer taşımak için kullanılan key tipi.
//
// context.Value() any tip kabul eder — string key başka paketlerin
// key'leriyle çakışabilir. Özel tip namespace collision'ı önler.
type contextKey string

// UserContextKey, auth middleware'ın doğrulanmış kullanıcıyı koyduğu key.
// Handler'larda r.Context().Value(UserContextKey).(*models.User) ile erişilir.
const UserContextKey contextKey = "user"
