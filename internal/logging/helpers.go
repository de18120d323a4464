package logging

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// =============================================================================

func Boot(format string, args ...interface{})          { Get(CategoryBoot).Info(format, args...) }
func API(format string, args ...interface{})           { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{})      { Get(CategoryAPI).Debug(format, args...) }
func Research(format string, args ...interface{})      { Get(CategoryResearch).Info(format, args...) }
func ResearchDebug(format string, args ...interface{}) { Get(CategoryResearch).Debug(format, args...) }
func Search(format string, args ...interface{})        { Get(CategorySearch).Info(format, args...) }
func SearchDebug(format string, args ...interface{})   { Get(CategorySearch).Debug(format, args...) }
func Fetch(format string, args ...interface{})         { Get(CategoryFetch).Info(format, args...) }
func FetchDebug(format string, args ...interface{})    { Get(CategoryFetch).Debug(format, args...) }
func Pipeline(format string, args ...interface{})      { Get(CategoryPipeline).Info(format, args...) }
func PipelineDebug(format string, args ...interface{}) { Get(CategoryPipeline).Debug(format, args...) }
func Stream(format string, args ...interface{})        { Get(CategoryStream).Info(format, args...) }
func StreamDebug(format string, args ...interface{})   { Get(CategoryStream).Debug(format, args...) }
func Edit(format string, args ...interface{})          { Get(CategoryEdit).Info(format, args...) }
func EditDebug(format string, args ...interface{})     { Get(CategoryEdit).Debug(format, args...) }
func Store(format string, args ...interface{})         { Get(CategoryStore).Info(format, args...) }
func StoreDebug(format string, args ...interface{})    { Get(CategoryStore).Debug(format, args...) }
func Server(format string, args ...interface{})        { Get(CategoryServer).Info(format, args...) }
func ServerDebug(format string, args ...interface{})   { Get(CategoryServer).Debug(format, args...) }
