package categorizer

// defaultRules is the built-in vendor keyword table. Containment matching walks
// it top to bottom, so more specific keywords sit above broader ones that
// share a prefix ("amazon fresh" and "amazon prime" above "amazon").
var defaultRules = []Rule{
	// Food & Dining
	{Keyword: "swiggy", Category: "Food"},
	{Keyword: "zomato", Category: "Food"},
	{Keyword: "dominos", Category: "Food"},
	{Keyword: "mcdonalds", Category: "Food"},
	{Keyword: "kfc", Category: "Food"},
	{Keyword: "subway", Category: "Food"},
	{Keyword: "burger king", Category: "Food"},
	{Keyword: "pizza hut", Category: "Food"},
	{Keyword: "starbucks", Category: "Food"},
	{Keyword: "cafe coffee day", Category: "Food"},
	{Keyword: "blinkit", Category: "Groceries"},

	// Groceries
	{Keyword: "big bazaar", Category: "Groceries"},
	{Keyword: "dmart", Category: "Groceries"},
	{Keyword: "reliance fresh", Category: "Groceries"},
	{Keyword: "more supermarket", Category: "Groceries"},
	{Keyword: "zepto", Category: "Groceries"},
	{Keyword: "instamart", Category: "Groceries"},
	{Keyword: "amazon fresh", Category: "Groceries"},
	{Keyword: "grofers", Category: "Groceries"},
	{Keyword: "bigbasket", Category: "Groceries"},

	// Transport
	{Keyword: "uber", Category: "Transport"},
	{Keyword: "ola", Category: "Transport"},
	{Keyword: "rapido", Category: "Transport"},
	{Keyword: "irctc", Category: "Transport"},
	{Keyword: "indian railways", Category: "Transport"},
	{Keyword: "indigo", Category: "Transport"},
	{Keyword: "air india", Category: "Transport"},
	{Keyword: "spicejet", Category: "Transport"},
	{Keyword: "makemytrip", Category: "Transport"},
	{Keyword: "goibibo", Category: "Transport"},

	// Utilities
	{Keyword: "bescom", Category: "Utilities"},
	{Keyword: "bwssb", Category: "Utilities"},
	{Keyword: "tata power", Category: "Utilities"},
	{Keyword: "adani electricity", Category: "Utilities"},
	{Keyword: "jio", Category: "Utilities"},
	{Keyword: "airtel", Category: "Utilities"},
	{Keyword: "vi", Category: "Utilities"},
	{Keyword: "bsnl", Category: "Utilities"},
	{Keyword: "hathway", Category: "Utilities"},
	{Keyword: "act fibernet", Category: "Utilities"},

	// Entertainment
	{Keyword: "netflix", Category: "Entertainment"},
	{Keyword: "amazon prime", Category: "Entertainment"},
	{Keyword: "hotstar", Category: "Entertainment"},
	{Keyword: "disney", Category: "Entertainment"},
	{Keyword: "spotify", Category: "Entertainment"},
	{Keyword: "youtube premium", Category: "Entertainment"},
	{Keyword: "bookmyshow", Category: "Entertainment"},
	{Keyword: "pvr", Category: "Entertainment"},
	{Keyword: "inox", Category: "Entertainment"},
	{Keyword: "sony liv", Category: "Entertainment"},

	// Shopping
	{Keyword: "amazon", Category: "Shopping"},
	{Keyword: "flipkart", Category: "Shopping"},
	{Keyword: "myntra", Category: "Shopping"},
	{Keyword: "ajio", Category: "Shopping"},
	{Keyword: "nykaa", Category: "Shopping"},
	{Keyword: "meesho", Category: "Shopping"},
	{Keyword: "snapdeal", Category: "Shopping"},

	// Health & Wellness
	{Keyword: "apollo pharmacy", Category: "Health"},
	{Keyword: "medplus", Category: "Health"},
	{Keyword: "1mg", Category: "Health"},
	{Keyword: "pharmeasy", Category: "Health"},
	{Keyword: "netmeds", Category: "Health"},
	{Keyword: "cult.fit", Category: "Health"},
	{Keyword: "curefit", Category: "Health"},
	{Keyword: "lybrate", Category: "Health"},

	// Education
	{Keyword: "udemy", Category: "Education"},
	{Keyword: "coursera", Category: "Education"},
	{Keyword: "unacademy", Category: "Education"},
	{Keyword: "byju", Category: "Education"},
	{Keyword: "vedantu", Category: "Education"},
	{Keyword: "upgrad", Category: "Education"},

	// Finance
	{Keyword: "zerodha", Category: "Finance"},
	{Keyword: "groww", Category: "Finance"},
	{Keyword: "paytm money", Category: "Finance"},
	{Keyword: "hdfc bank", Category: "Finance"},
	{Keyword: "sbi", Category: "Finance"},
	{Keyword: "icici", Category: "Finance"},
	{Keyword: "lic", Category: "Finance"},
}
