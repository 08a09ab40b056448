package nodes

const (
	msgCreateNeedsDetail   = "To create the order I need the product `detail`."
	msgQuantityNotInteger  = "Quantity must be a valid whole number."
	msgQuantityNotPositive = "Quantity must be greater than 0."
	msgProductNotUnique    = "I could not find a unique product with detail `%s` in the catalog."
	msgDeleteNeedsID       = "To delete an order I need the `purchase_order_id`."
	msgOrderNotFound       = "There is no purchase order with id `%s`."
	msgDeleteForeignOrder  = "You cannot delete a purchase order that belongs to another user."
	msgNoOrdersFound       = "No purchase orders were found for those filters."
	msgOrdersFoundHeader   = "Purchase orders found:\n```json\n"
	msgUnknownOperation    = "Sorry, I cannot perform that operation. An internal error occurred while interpreting the request."

	ImpactCreateOrder = "A new purchase order will be created."
	ImpactDeleteOrder = "The purchase order record will be permanently deleted."
)
