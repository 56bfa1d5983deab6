package constants

// Error responses
const CUSTOMER_NOT_FOUND = "customer not found"
const FABRIC_NOT_FOUND = "fabric not found"
const GARMENT_NOT_FOUND = "garment not found"
const ORDER_NOT_FOUND = "order not found"
const RECORD_NOT_FOUND = "record not found"
const PERMISSION_DENIED = "permission denied"
const INVALID_TOKEN = "invalid or expired token"
const INVALID_ORDER_STATUS = "invalid order status"
const STATUS_MOVES_BACKWARD = "order status cannot move backwards"
const INVALID_TRACKING_CODE = "tracking code must be RT followed by 10 digits"
const TRACKING_CODE_EXHAUSTED = "could not issue a unique tracking code"
const ORDER_ALREADY_COMPLETED = "order is already completed"
const NEGATIVE_PRICE = "price must not be negative"
const NEGATIVE_STOCK = "stock must not be negative"
const ORDER_STATUS_CHANGED = "order status was changed by someone else, reload and retry"
const IMMUTABLE_ORDER_FIELD = "field cannot be changed after the order is placed"
const INVALID_VALUE = "invalid input value"
const SELF_REGISTER_ONE = "a customer registers one profile at a time"
const STOCK_DELTA_RANGE = "stock delta is out of range"
