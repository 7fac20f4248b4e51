package enums

import "fmt"

// InvoiceType distinguishes the two billing directions of a marketplace sale.
type InvoiceType string

const (
	InvoiceTypeVendorToAdmin   InvoiceType = "vendor_to_admin"
	InvoiceTypeAdminToCustomer InvoiceType = "admin_to_customer"
)

var validInvoiceTypes = []InvoiceType{
	InvoiceTypeVendorToAdmin,
	InvoiceTypeAdminToCustomer,
}

// String implements fmt.Stringer.
func (i InvoiceType) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoiceType.
func (i InvoiceType) IsValid() bool {
	for _, candidate := range validInvoiceTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// SequenceCode is the short prefix used in invoice numbers.
func (i InvoiceType) SequenceCode() string {
	if i == InvoiceTypeVendorToAdmin {
		return "V"
	}
	return "C"
}

// ParseInvoiceType converts raw input into an InvoiceType.
func ParseInvoiceType(value string) (InvoiceType, error) {
	for _, candidate := range validInvoiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice type %q", value)
}

// InvoicePaymentStatus tracks settlement of an issued invoice.
type InvoicePaymentStatus string

const (
	InvoicePaymentStatusUnpaid InvoicePaymentStatus = "unpaid"
	InvoicePaymentStatusPaid   InvoicePaymentStatus = "paid"
)

var validInvoicePaymentStatuses = []InvoicePaymentStatus{
	InvoicePaymentStatusUnpaid,
	InvoicePaymentStatusPaid,
}

// String implements fmt.Stringer.
func (i InvoicePaymentStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known InvoicePaymentStatus.
func (i InvoicePaymentStatus) IsValid() bool {
	for _, candidate := range validInvoicePaymentStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseInvoicePaymentStatus converts raw input into an InvoicePaymentStatus.
func ParseInvoicePaymentStatus(value string) (InvoicePaymentStatus, error) {
	for _, candidate := range validInvoicePaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice payment status %q", value)
}
