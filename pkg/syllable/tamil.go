package syllable

// Tamil pa-ta-ka syllables
const (
	Pa = "பா"
	Ta = "டா"
	Ka = "கா"
)

// TamilPatakaPatterns covers the spellings a recognizer produces for
// repeated pa-ta-ka, including doubled consonants and bare consonants
var TamilPatakaPatterns = map[string][]string{
	"பாட்டாக": {Pa, Ta, Ka},
	"பாட்டா":  {Pa, Ta},
	"பாக்கா":  {Pa, Ka},
	"காப்பா":  {Ka, Pa},
	"டாக்கா":  {Ta, Ka},
	"பா":      {Pa},
	"ப":       {Pa},
	"ப்":      {Pa},
	"ப்ப":     {Pa},
	"ட்டா":    {Ta},
	"ட்":      {Ta},
	"ட":       {Ta},
	"டா":      {Ta},
	"க்கா":    {Ka},
	"க்":      {Ka},
	"க":       {Ka},
	"கா":      {Ka},
}

// TamilRomanization maps the pa-ta-ka syllables to Latin script
var TamilRomanization = map[string]string{
	Pa: "pa",
	Ta: "ta",
	Ka: "ka",
}

// NewTamilPatakaSplitter returns the splitter used for diadochokinetic
// pa-ta-ka recordings
func NewTamilPatakaSplitter() *PatternSplitter {
	return NewPatternSplitter(TamilPatakaPatterns, TamilRomanization)
}
