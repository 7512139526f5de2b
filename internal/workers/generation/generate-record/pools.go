// internal/workers/generation/generate-record/pools.go
package generaterecord

var (
	maleNames = []string{
		"Aarav", "Vihaan", "Aditya", "Arjun", "Rohan", "Ishaan", "Vivaan", "Reyansh", "Rahul", "Amit",
		"Kabir", "Aryan", "Shaurya", "Atharv", "Ayaan", "Dhruv", "Krishna", "Sai", "Manish", "Deepak",
	}

	femaleNames = []string{
		"Diya", "Ananya", "Saanvi", "Priya", "Neha", "Kavya", "Aadya", "Isha", "Meera", "Riya",
		"Sika", "Myra", "Amaira", "Kiara", "Aditi", "Pooja", "Shruti", "Sneha", "Anjali",
	}

	lastNames = []string{
		"Patel", "Sharma", "Singh", "Kumar", "Gupta", "Verma", "Reddy", "Nair", "Malhotra", "Iyer",
		"Mehta", "Joshi", "Rao", "Saxena", "Bhatia", "Das", "Chopra", "Desai", "Jain",
	}

	emailDomains = []string{"gmail.com", "yahoo.co.in", "outlook.com", "rediffmail.com", "hotmail.com"}

	cities = []string{
		"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai", "Kolkata", "Pune", "Ahmedabad", "Jaipur", "Surat",
		"Lucknow", "Kanpur", "Nagpur", "Indore", "Thane", "Bhopal", "Patna", "Vadodara", "Chandigarh", "Kochi",
	}

	// hostel pools are disjoint and keyed by the record's gender
	boysHostels  = []string{"Hostel J", "Hostel K", "Hostel B", "Hostel H", "Hostel L", "Hostel O", "Hostel A"}
	girlsHostels = []string{"Hostel I", "Hostel Q", "PG", "Hostel G"}

	departments = []string{"Computer Science", "Mechanical", "Electrical", "Civil", "Electronics", "Information Tech", "Biotech"}
	colors      = []string{"Red", "Blue", "Green", "Yellow", "Black", "White", "Purple", "Orange"}
	foods       = []string{"Pizza", "Burger", "Pasta", "Biryani", "Dosa", "Idli", "Sandwich", "Salad"}
	hobbies     = []string{"Reading", "Gaming", "Traveling", "Cooking", "Music", "Sports", "Photography"}
	colleges    = []string{"IIT Bombay", "BITS Pilani", "NIT Trichy", "VIT Vellore", "Manipal Institute", "SRM University", "Amity University"}

	sentences = []string{
		"The quick brown fox jumps over the lazy dog.",
		"Reviewing the submitted application for further processing.",
		"Ideally, we would like to schedule a meeting next week.",
		"This is a generated response for testing purposes.",
		"Please consider this as a placeholder for the actual content.",
		"The service quality was exceptional and exceeded expectations.",
		"I encountered a few issues while navigating the interface.",
		"The product durability seems to be quite good overall.",
	}

	quarterHours = []int{0, 15, 30, 45}
)

// numeric ranges, inclusive
const (
	ageMin             = 18
	ageMax             = 30
	yearMin            = 1990
	yearMax            = 2025
	intMin             = 1
	intMax             = 100
	birthYearMin       = 1995
	birthYearMax       = 2005
	recentYearMin      = 2024
	recentYearMax      = 2025
	phoneHeadMin       = 60000
	phoneHeadMax       = 99999
	phoneTailMin       = 10000
	phoneTailMax       = 99999
	answerMin          = 100
	answerMax          = 999
	suffixMin          = 1000
	suffixMax          = 9999
	placeholderOptions = 3
	minSentences       = 2
	maxSentences       = 4
)
