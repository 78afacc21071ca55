package discount

// ErrorKind classifies recoverable business failures. Anything not covered
// here is an unexpected fault and travels as a plain error.
type ErrorKind int

const (
	ErrKindValidation ErrorKind = iota
	ErrKindConflict
	ErrKindNotFound
)

// Error is a recoverable business failure. The message is user-facing and
// safe to render; handlers map the kind to an HTTP status.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func validationError(msg string) *Error {
	return &Error{Kind: ErrKindValidation, Message: msg}
}

// User-facing messages. The admin UI is Vietnamese.
const (
	MsgCodeRequired        = "Mã giảm giá không được để trống"
	MsgCodeNoWhitespace    = "Mã giảm giá không được chứa khoảng trắng"
	MsgInvalidKind         = "Loại giảm giá phải là PERCENT hoặc FIXED"
	MsgValueRequired       = "Giá trị giảm phải lớn hơn 0"
	MsgPercentTooHigh      = "Giảm giá theo phần trăm không được vượt quá 100"
	MsgFixedMinimum        = "Giảm giá cố định tối thiểu là 1000"
	MsgMaxDiscountInvalid  = "Mức giảm tối đa phải lớn hơn 0"
	MsgMaxDiscountMinimum  = "Mức giảm tối đa tối thiểu là 1000"
	MsgMinPurchaseNegative = "Giá trị đơn tối thiểu không được âm"
	MsgMinPurchaseMinimum  = "Giá trị đơn tối thiểu phải từ 1000 trở lên"
	MsgUsageLimitInvalid   = "Giới hạn lượt sử dụng phải lớn hơn 0"
	MsgPerUserInvalid      = "Giới hạn mỗi khách hàng phải lớn hơn 0"
	MsgPerUserOverTotal    = "Giới hạn mỗi khách hàng không được vượt quá tổng lượt sử dụng"
	MsgDatesRequired       = "Ngày bắt đầu và ngày hết hạn là bắt buộc"
	MsgDateUnparseable     = "Ngày không hợp lệ, định dạng phải là YYYY-MM-DD"
	MsgExpiryBeforeStart   = "Ngày hết hạn phải sau ngày bắt đầu"
	MsgWindowIncomplete    = "Phải cung cấp cả ngày bắt đầu và ngày kết thúc áp dụng"
	MsgWindowInverted      = "Ngày kết thúc áp dụng phải sau ngày bắt đầu áp dụng"
	MsgWindowOutOfRange    = "Khoảng thời gian áp dụng phải nằm trong thời hạn của mã"
	MsgNightsNegative      = "Số đêm không được âm"
	MsgNightsInverted      = "Số đêm tối thiểu không được lớn hơn số đêm tối đa"
	MsgStatusInvalid       = "Trạng thái không hợp lệ"
	MsgExtendDaysInvalid   = "Số ngày gia hạn phải lớn hơn 0"

	MsgDuplicateCode = "Mã giảm giá đã tồn tại"
	MsgNotFound      = "Không tìm thấy mã giảm giá"
)

// ErrDuplicateCode is returned when a create or update collides with an
// existing code after normalization.
var ErrDuplicateCode = &Error{Kind: ErrKindConflict, Message: MsgDuplicateCode}

// ErrNotFound is returned when the target discount id does not exist.
var ErrNotFound = &Error{Kind: ErrKindNotFound, Message: MsgNotFound}
